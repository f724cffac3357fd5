// Package test holds helpers shared by the tests of several packages.
package test

import (
	"io/ioutil"
	"os"
	"reflect"
	"testing"
)

// MustBe uses reflect.DeepEqual to assert that thing1 and thing2 are equal, and
// fails otherwise.
func MustBe(t testing.TB, thing1, thing2 interface{}, context ...string) {
	t.Helper()
	var ctx string
	if len(context) == 0 {
		ctx = ""
	} else {
		ctx = context[0] + ": "
	}
	if !reflect.DeepEqual(thing1, thing2) {
		t.Fatalf("%v'%#v' != '%#v'", ctx, thing1, thing2)
	}
}

// ErrNil asserts that the err is nil and fails otherwise.
func ErrNil(t testing.TB, err error, ctx string) {
	t.Helper()
	if err != nil {
		t.Fatalf("%v: %v", ctx, err)
	}
}

// MustTempFile writes content to a new temporary file and returns its name.
// The file is removed when the test finishes.
func MustTempFile(t testing.TB, content string) string {
	t.Helper()
	f, err := ioutil.TempFile("", "bankdata")
	if err != nil {
		t.Fatalf("getting temp file: %v", err)
	}
	n, err := f.WriteString(content)
	if err != nil || n != len(content) {
		t.Fatalf("writing temp file: %v, n: %v", err, n)
	}
	if err := f.Close(); err != nil {
		t.Fatalf("closing temp file: %v", err)
	}
	t.Cleanup(func() { os.Remove(f.Name()) })
	return f.Name()
}

// MustTempDir creates a temporary directory which is removed when the test
// finishes.
func MustTempDir(t testing.TB) string {
	t.Helper()
	dir, err := ioutil.TempDir("", "bankdata")
	if err != nil {
		t.Fatalf("getting temp dir: %v", err)
	}
	t.Cleanup(func() { os.RemoveAll(dir) })
	return dir
}
