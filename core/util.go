package core

import (
	"crypto/rand"
	"log"
	"math/big"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// NowFunc returns the current time. Mockable in tests.
var NowFunc = time.Now

// CleanString trims all leading and trailing whitespace in `s` and optionally lowers it.
func CleanString(s string, lower ...bool) string {
	s = strings.TrimSpace(s)
	if len(lower) > 0 && lower[0] {
		return strings.ToLower(s)
	}
	return s
}

const tempPasswordChars = "abcdefghijkmnopqrstuvwxyzABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// RandomString returns a random string of length n suitable for temporary passwords.
func RandomString(n int) string {
	b := make([]byte, n)
	max := big.NewInt(int64(len(tempPasswordChars)))
	for i := range b {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			log.Panicf("core.RandomString: %v", err)
		}
		b[i] = tempPasswordChars[idx.Int64()]
	}
	return string(b)
}

// Getwd tries to find the project root (the directory holding go.mod).
// go-test changes the working directory to the test package being run during tests,
// so we walk up from there. Outside of the source tree (deployed binary) the current directory is used.
func Getwd() string {
	wd, err := os.Getwd()
	if err != nil {
		log.Fatal(err)
	}
	currDir := wd
	for {
		if _, err := os.Stat(filepath.Join(currDir, "go.mod")); err == nil {
			return currDir
		}
		newDir := filepath.Dir(currDir)
		if newDir == string(os.PathSeparator) || newDir == currDir {
			return wd
		}
		currDir = newDir
	}
}
