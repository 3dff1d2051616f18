package tools

// TokenSets lists every closed token set by the name a host validates it
// under. Properties sharing an enum (ArrowStart, ArrowEnd) each get an
// entry.
func TokenSets() map[string][]string {
	return map[string][]string{
		toolKinds.name:          toolKinds.all(),
		clickStates.name:        clickStates.all(),
		keyTokens.name:          keyTokens.all(),
		eraserModes.name:        eraserModes.all(),
		penStyles.name:          penStyles.all(),
		joinStyles.name:         joinStyles.all(),
		lineCaps.name:           lineCaps.all(),
		fontStyles.name:         fontStyles.all(),
		textAligns.name:         textAligns.all(),
		shapeOptions.name:       shapeOptions.all(),
		"ArrowStart":            arrows.all(),
		"ArrowEnd":              arrows.all(),
		splineStyles.name:       splineStyles.all(),
		gradientTypes.name:      gradientTypes.all(),
		colorspaces.name:        colorspaces.all(),
		phongShapeKinds.name:    phongShapeKinds.all(),
		deformationModes.name:   deformationModes.all(),
		floodFillOptions.name:   floodFillOptions.all(),
		perspectiveOptions.name: perspectiveOptions.all(),
	}
}
