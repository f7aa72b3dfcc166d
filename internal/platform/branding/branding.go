// Package branding centralizes user-facing product naming so commands and
// service surfaces stay consistent.
package branding

// AppName is the user-facing product name.
const AppName = "RatingLab"
