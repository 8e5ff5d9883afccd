package handlers

import (
	"bytes"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type TestStruct struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

func TestBindNestedOrFlat(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name        string
		key         string
		body        string
		expected    TestStruct
		expectError bool
	}{
		{
			name:     "Nested Structure",
			key:      "tenant",
			body:     `{"tenant": {"name": "Alice", "age": 30}}`,
			expected: TestStruct{Name: "Alice", Age: 30},
		},
		{
			name:     "Flat Structure",
			key:      "tenant",
			body:     `{"name": "Bob", "age": 25}`,
			expected: TestStruct{Name: "Bob", Age: 25},
		},
		{
			name:     "Missing Key Falls Back To Flat",
			key:      "tenant",
			body:     `{"other": "value", "name": "Charlie", "age": 40}`,
			expected: TestStruct{Name: "Charlie", Age: 40},
		},
		{
			name:        "Invalid Field Type",
			key:         "tenant",
			body:        `{"name": "Eve", "age": "invalid"}`,
			expectError: true,
		},
		{
			name:        "Nested But Invalid Content",
			key:         "tenant",
			body:        `{"tenant": {"name": "Frank", "age": "invalid"}}`,
			expectError: true,
		},
		{
			name:        "Nested Key Present But Wrong Type",
			key:         "tenant",
			body:        `{"tenant": "some string"}`,
			expectError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("POST", "/", bytes.NewBufferString(tt.body))
			c.Request.Header.Set("Content-Type", "application/json")

			var result TestStruct
			err := BindNestedOrFlat(c, tt.key, &result)

			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
