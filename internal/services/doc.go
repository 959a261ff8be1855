// Package services carries cross-cutting service concerns: the error
// taxonomy shared by pipeline stages and the context annotations that
// thread job identity through logging.
package services
