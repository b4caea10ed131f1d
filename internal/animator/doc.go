// Package animator turns a sea-level dataset into a polar animation: each year
// is placed at an angle given by its position within its decade and at a radius
// chosen by a RadiusPolicy. Frames are pure functions of the frame index and are
// rendered to RGBA images, paced by a Player and collected into a GIF.
package animator
