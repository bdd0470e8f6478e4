package zipstream

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateName(t *testing.T) {
	valid := []string{
		"a.txt",
		"dir/a.txt",
		"deeply/nested/path/file.bin",
		"no-extension",
		"with spaces.txt",
		"unicode-héllo-MÜLLER.txt",
		"dots..in..name",
	}
	for _, name := range valid {
		t.Run("valid/"+name, func(t *testing.T) {
			assert.NoError(t, validateName(name))
		})
	}

	invalid := []struct {
		name   string
		reason string
	}{
		{"", "name is empty"},
		{"bad\xff\xfeutf8", "name is not valid UTF-8"},
		{`back\slash`, `forbidden character "\\"`},
		{"quest?ion", `forbidden character "?"`},
		{"per%cent", `forbidden character "%"`},
		{"aster*isk", `forbidden character "*"`},
		{"co:lon", `forbidden character ":"`},
		{"pi|pe", `forbidden character "|"`},
		{`quo"te`, `forbidden character "\""`},
		{"l<t", `forbidden character "<"`},
		{"g>t", `forbidden character ">"`},
		{"/leading", "empty path segment"},
		{"trailing/", "empty path segment"},
		{"dou//ble", "empty path segment"},
		{"dir/ba:d/file", `forbidden character ":"`},
	}
	for _, tt := range invalid {
		t.Run("invalid/"+tt.name, func(t *testing.T) {
			err := validateName(tt.name)
			var nameErr *NameError
			require.ErrorAs(t, err, &nameErr)
			assert.Equal(t, tt.name, nameErr.Name)
			assert.Equal(t, tt.reason, nameErr.Reason)
		})
	}
}
