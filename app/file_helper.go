package app

import (
	"os"
	"path/filepath"
)

// FileHelper provides file operation utilities
type FileHelper struct{}

// NewFileHelper creates a new FileHelper
func NewFileHelper() *FileHelper {
	return &FileHelper{}
}

// FileExists checks if a regular file exists
func (h *FileHelper) FileExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return !info.IsDir(), nil
}

// DirExists checks if a directory exists
func (h *FileHelper) DirExists(path string) (bool, error) {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}
	return info.IsDir(), nil
}

// HasPOM reports whether dir contains a pom.xml
func (h *FileHelper) HasPOM(dir string) bool {
	exists, err := h.FileExists(filepath.Join(dir, "pom.xml"))
	return err == nil && exists
}

// ResolveProjectRoot returns the absolute path of a project directory
func ResolveProjectRoot(fileHelper *FileHelper, root string) (string, error) {
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return "", err
	}
	exists, err := fileHelper.DirExists(abs)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", os.ErrNotExist
	}
	return abs, nil
}
