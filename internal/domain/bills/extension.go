package bills

import (
	"strings"
)

// ValidExtensions lists the receipt extensions accepted on submission
var ValidExtensions = []string{".jpg", ".jpeg", ".png"}

// InvalidExtensionMessage is shown when a receipt with a bad extension is selected
const InvalidExtensionMessage = `
Invalid file extension.
Valid extensions are:
.jpg
.jpeg
.png
`

// InvalidFormBadFileMessage is shown when the form is submitted with a bad receipt
const InvalidFormBadFileMessage = "\nThe form is not valid.\n" + InvalidExtensionMessage + "\n"

// Extension returns the part of fileName starting at its last dot, case preserved.
// It returns "" when fileName is empty or has no dot.
func Extension(fileName string) string {
	idx := strings.LastIndex(fileName, ".")
	if idx == -1 {
		return ""
	}
	return fileName[idx:]
}

// IsValidFileName reports whether fileName carries one of ValidExtensions,
// compared case-insensitively. A bare ".jpg" is valid.
func IsValidFileName(fileName string) bool {
	ext := Extension(fileName)
	if ext == "" {
		return false
	}
	ext = strings.ToLower(ext)
	for _, valid := range ValidExtensions {
		if ext == valid {
			return true
		}
	}
	return false
}
