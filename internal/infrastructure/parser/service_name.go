package parser

import (
	"strings"
	"unicode"
)

var (
	vendorPrefixes = map[string]struct{}{"amazon": {}, "aws": {}}
	lowerAcronyms  = map[string]struct{}{"s3": {}, "ec2": {}, "rds": {}, "eks": {}, "ecs": {}}
)

// ExtractServiceName guesses the service a headline is about.
// "Amazon Bedrock announces agents" -> "Amazon Bedrock"; headlines without a vendor
// prefix fall back to their leading capitalized words.
func ExtractServiceName(title string) string {
	words := strings.Fields(title)

	for i, word := range words {
		if _, ok := vendorPrefixes[strings.ToLower(trimPunct(word))]; !ok || i+1 >= len(words) {
			continue
		}

		parts := []string{trimPunct(word)}
		for j := i + 1; j < len(words) && j < i+4; j++ {
			token := trimPunct(words[j])
			if token == "" || !isServiceToken(token) {
				break
			}
			parts = append(parts, token)
			if token != words[j] {
				break
			}
		}
		if len(parts) > 1 {
			return strings.Join(parts, " ")
		}
	}

	var capitalized []string
	for i, word := range words {
		if i >= 5 {
			break
		}
		token := trimPunct(word)
		if token != "" && startsUpper(token) {
			capitalized = append(capitalized, token)
		}
	}
	if len(capitalized) > 0 {
		return strings.Join(capitalized, " ")
	}

	return strings.TrimSpace(title)
}

func isServiceToken(token string) bool {
	if startsUpper(token) {
		return true
	}
	_, ok := lowerAcronyms[strings.ToLower(token)]
	return ok
}

func startsUpper(token string) bool {
	for _, r := range token {
		return unicode.IsUpper(r)
	}
	return false
}

func trimPunct(word string) string {
	return strings.TrimFunc(word, unicode.IsPunct)
}
