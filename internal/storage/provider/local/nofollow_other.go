//go:build !unix

package local

const noFollow = 0
