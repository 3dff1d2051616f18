// Package tools is the caller-side surface for the paint host's tool
// commands: closed token enums, a color palette, and a Client with one
// method per tool command.
package tools
