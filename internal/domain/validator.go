package domain

import (
	"fmt"
	"net/url"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/go-playground/validator/v10"
)

// InputValidator implements the field-level checks shared by the manifest
// parser and the pack validator. Its methods return plain errors whose text
// is the human-readable reason; callers attach pack and file context.
type InputValidator struct {
	allowedSchemes []string
	allowedChars   *regexp.Regexp
	structValidate *validator.Validate
}

// NewInputValidator creates a new input validator with default settings
func NewInputValidator() *InputValidator {
	return &InputValidator{
		allowedSchemes: []string{"http", "https"},
		// a to z, A to Z, 0 to 9, _ , ' - . and whitespace; RE2's \s lacks \v
		allowedChars:   regexp.MustCompile(`^[\w\-.,'\s\v]+$`),
		structValidate: validator.New(),
	}
}

// ValidateText checks a display string: non-empty, at most maxChars
// characters, allow-listed characters only and no "..".
func (v *InputValidator) ValidateText(field, value string, maxChars int) error {
	if value == "" {
		return fmt.Errorf("sticker pack %s is empty", field)
	}
	if utf8.RuneCountInString(value) > maxChars {
		return fmt.Errorf("sticker pack %s cannot exceed %d characters", field, maxChars)
	}
	if !v.allowedChars.MatchString(value) {
		return fmt.Errorf("%s contains invalid characters, allowed characters are a to z, A to Z, 0 to 9, _ , ' - . and space character", value)
	}
	if strings.Contains(value, "..") {
		return fmt.Errorf("%s cannot contain ..", value)
	}
	return nil
}

// ValidateWebsiteURL checks that link is an absolute http or https URL with a host
func (v *InputValidator) ValidateWebsiteURL(label, link string) error {
	if _, err := v.parseWebsiteURL(label, link); err != nil {
		return err
	}
	return nil
}

// ValidateStoreURL checks ValidateWebsiteURL and that the host is exactly storeDomain
func (v *InputValidator) ValidateStoreURL(label, link, storeDomain string) error {
	parsedURL, err := v.parseWebsiteURL(label, link)
	if err != nil {
		return err
	}
	if !strings.EqualFold(parsedURL.Hostname(), storeDomain) {
		return fmt.Errorf("%s should use store domain: %s", label, storeDomain)
	}
	return nil
}

func (v *InputValidator) parseWebsiteURL(label, link string) (*url.URL, error) {
	parsedURL, err := url.Parse(link)
	if err != nil {
		return nil, fmt.Errorf("url: %s is malformed", link)
	}
	if !v.isAllowedScheme(parsedURL.Scheme) || parsedURL.Host == "" {
		return nil, fmt.Errorf("make sure to include http or https in url links, %s is not a valid url: %s", label, link)
	}
	return parsedURL, nil
}

// ValidateEmail checks the address against the validator package's e-mail grammar
func (v *InputValidator) ValidateEmail(label, email string) error {
	if err := v.structValidate.Var(email, "email"); err != nil {
		return fmt.Errorf("%s does not seem valid, email is: %s", label, email)
	}
	return nil
}

// ValidateFileName rejects empty names, path separators and "..", and
// requires one of the given extensions when any are listed.
func (v *InputValidator) ValidateFileName(label, name string, extensions ...string) error {
	if name == "" {
		return fmt.Errorf("%s cannot be empty", label)
	}
	if ContainsTraversal(name) {
		return fmt.Errorf("%s should not contain .. or / to prevent directory traversal, file is: %s", label, name)
	}
	if len(extensions) > 0 && !hasExtension(name, extensions) {
		return fmt.Errorf("%s should end in one of %s, file is: %s", label, strings.Join(extensions, ", "), name)
	}
	return nil
}

// ContainsTraversal reports whether name could escape its pack directory
func ContainsTraversal(name string) bool {
	return strings.Contains(name, "..") || strings.ContainsAny(name, `/\`)
}

func hasExtension(name string, extensions []string) bool {
	return slices.ContainsFunc(extensions, func(ext string) bool {
		return strings.HasSuffix(name, ext)
	})
}

// isAllowedScheme checks if the URL scheme is allowed
func (v *InputValidator) isAllowedScheme(scheme string) bool {
	return slices.Contains(v.allowedSchemes, strings.ToLower(scheme))
}
