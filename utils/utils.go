package utils

import (
	"math/rand"
	"strings"

	"github.com/tidwall/gjson"
)

var letterRunes = []rune("abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789")

func RandStringRunes(n int) string {
	b := make([]rune, n)
	for i := range b {
		b[i] = letterRunes[rand.Intn(len(letterRunes))]
	}
	return string(b)
}

// NoErrorFieldInJSON reports whether a response body carries no top level
// "error" member. Batch bodies are checked element by element.
func NoErrorFieldInJSON(jsonStr string) bool {
	root := gjson.Parse(jsonStr)

	if root.IsArray() {
		for _, elem := range root.Array() {
			if elem.Get("error").Exists() {
				return false
			}
		}
		return true
	}

	return !root.Get("error").Exists()
}

// ContainsFold is a case insensitive strings.Contains.
func ContainsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
