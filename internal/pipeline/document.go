package pipeline

import (
	"regexp"
	"strings"
)

// DocumentTypeDNI is the document type assigned to customer documents
const DocumentTypeDNI = "DNI"

var (
	documentPunctuation = strings.NewReplacer(".", "", "-", "", " ", "", "(", "", ")", "")
	documentPattern     = regexp.MustCompile(`^\d{7,}$`)
)

// ValidDocument strips separators from a national id and returns it when it
// is at least seven digits
func ValidDocument(raw string) (string, bool) {
	doc := strings.TrimSpace(documentPunctuation.Replace(raw))
	if !documentPattern.MatchString(doc) {
		return "", false
	}
	return doc, true
}
