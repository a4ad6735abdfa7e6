// Package classify decides which shows stay out of the catalog.
//
// A Classifier evaluates an ordered rule table against a show: news and talk
// programming, sports programming, broadcasters outside the allowed
// countries, and operator-blocked broadcasters. The first matching rule
// excludes the show and its name is reported for logging. Matching is
// case-insensitive using Unicode case folding.
package classify
