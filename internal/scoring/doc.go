// Package scoring computes Drop Cred reputation scores.
//
// Four formula versions are implemented as strategies: pure approval ratio,
// net approval, Bayesian-smoothed rate, and Bayesian plus participation
// bonus. An optional calibration pass remaps a whole population of raw
// scores to a target mean and spread. Everything here is pure; snapshot
// persistence lives in the database package.
package scoring
