//go:build tools
// +build tools

// Package chatline pins the code generators run through go generate
// (mockgen for the contract mocks) so go.mod tracks them.
package chatline

import (
	_ "go.uber.org/mock/mockgen"
)
