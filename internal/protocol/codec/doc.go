// Package codec translates between typed call-site values and the command
// wire format, and decodes host replies back into typed values.
//
// Ownership boundary:
// - command and argument value model
// - argument normalization (points, strokes, token lists, colors)
// - command/reply/error/sync frame encoding
// - shape-checked reply decoding
//
// The codec is pure: no I/O beyond the io.Writer/byte slices it is handed,
// and no recovery from malformed input.
package codec
