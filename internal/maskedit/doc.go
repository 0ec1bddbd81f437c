// Package maskedit is a small raster paint program used to tag regions of a
// house photo with exterior parts.
//
// The editor paints on a transparent NRGBA layer sized to the photo's aspect
// ratio fitted into the client viewport. Every stroke uses the legend color
// of the selected part, so the finished layer can be read back pixel by pixel
// to learn which parts the user marked. A linear history of full-canvas
// snapshots backs undo.
package maskedit
