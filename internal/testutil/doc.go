// Package testutil holds helpers shared by tests in other packages.
package testutil
