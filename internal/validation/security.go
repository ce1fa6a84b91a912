// Package validation checks user-supplied commands and paths before they
// reach the filesystem or an external process.
package validation

import (
	"fmt"
	"path/filepath"
	"strings"
)

// AllowedCompilers are the external stylesheet compilers that may be run.
var AllowedCompilers = map[string]bool{
	"sass":      true,
	"dart-sass": true,
	"sassc":     true,
}

var shellMetachars = []string{";", "&", "|", "$", "`", "(", ")", "<", ">", "\\", "\"", "'"}

// ValidateArgument rejects shell metacharacters and path traversal in a
// command line argument.
func ValidateArgument(arg string) error {
	for _, char := range shellMetachars {
		if strings.Contains(arg, char) {
			return fmt.Errorf("contains dangerous character: %s", char)
		}
	}

	if strings.Contains(arg, "..") {
		return fmt.Errorf("contains path traversal: %s", arg)
	}

	return nil
}

// ValidateCommand validates a command name against an allowlist. Absolute
// paths are checked by their base name.
func ValidateCommand(command string, allowedCommands map[string]bool) error {
	if command == "" {
		return fmt.Errorf("command cannot be empty")
	}

	if err := ValidateArgument(command); err != nil {
		return fmt.Errorf("invalid command '%s': %w", command, err)
	}

	name := command
	if filepath.IsAbs(command) {
		name = filepath.Base(command)
	} else if strings.ContainsRune(command, '/') {
		return fmt.Errorf("command '%s' must be a bare name or an absolute path", command)
	}

	if !allowedCommands[name] {
		return fmt.Errorf("command '%s' is not allowed", command)
	}

	return nil
}

// ValidateRelativePath checks a layout segment: relative, non-empty and
// staying beneath the project root.
func ValidateRelativePath(path string) error {
	if path == "" {
		return fmt.Errorf("path cannot be empty")
	}
	if filepath.IsAbs(path) {
		return fmt.Errorf("path must be relative: %s", path)
	}

	clean := filepath.ToSlash(filepath.Clean(path))
	if clean == "." {
		return fmt.Errorf("path must name a directory below the root: %s", path)
	}
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return fmt.Errorf("path traversal detected: %s", path)
	}

	for _, char := range []string{";", "&", "|", "$", "`", "<", ">"} {
		if strings.Contains(path, char) {
			return fmt.Errorf("path contains dangerous character: %s", char)
		}
	}

	return nil
}

// ValidateFileExtension validates file extensions against an allowlist
func ValidateFileExtension(filename string, allowedExtensions []string) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return fmt.Errorf("file must have an extension")
	}

	for _, allowed := range allowedExtensions {
		if ext == strings.ToLower(allowed) {
			return nil
		}
	}

	return fmt.Errorf("file extension '%s' is not allowed", ext)
}
