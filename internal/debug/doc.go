// Package debug provides assertions that are compiled in only when the
// smartptr_assert build tag is set.
//
//	go test -tags smartptr_assert ./...
package debug
