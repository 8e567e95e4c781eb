// Package jsonutil provides fast JSON helpers shared by the column types
// and available to consumers for payload (de)serialization.
package jsonutil

import (
	jsoniter "github.com/json-iterator/go"
)

var api = jsoniter.ConfigCompatibleWithStandardLibrary

// Marshal encodes v as JSON.
func Marshal(v interface{}) ([]byte, error) {
	return api.Marshal(v)
}

// MarshalString encodes v as a JSON string.
func MarshalString(v interface{}) (string, error) {
	return api.MarshalToString(v)
}

// Unmarshal decodes data into v.
func Unmarshal(data []byte, v interface{}) error {
	return api.Unmarshal(data, v)
}

// UnmarshalString decodes s into v.
func UnmarshalString(s string, v interface{}) error {
	return api.UnmarshalFromString(s, v)
}
