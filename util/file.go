package util

import (
	"encoding/json"
	"os"
	"path/filepath"
)

// WriteFileAtomic writes data to a temp file next to dst and renames it
// into place
func WriteFileAtomic(dst string, data []byte) error {
	dir := filepath.Dir(dst)
	err := os.MkdirAll(dir, 0775)
	if err != nil {
		return err
	}
	outFile, err := os.CreateTemp(dir, "tmp")
	if err != nil {
		return err
	}
	defer os.Remove(outFile.Name())
	_, err = outFile.Write(data)
	if err != nil {
		outFile.Close()
		return err
	}
	err = outFile.Close()
	if err != nil {
		return err
	}
	os.Chmod(outFile.Name(), 0644)

	return os.Rename(outFile.Name(), dst)
}

// DumpFile saves data in a new file in dir and returns its path
func DumpFile(dir string, prefix string, data []byte) (string, error) {
	err := os.MkdirAll(dir, 0775)
	if err != nil {
		return "", err
	}
	f, err := os.CreateTemp(dir, prefix+"-*.html")
	if err != nil {
		return "", err
	}
	defer f.Close()
	_, err = f.Write(data)
	if err != nil {
		return "", err
	}

	return f.Name(), f.Close()
}

// LoadJSON unmarshals the file into v. A missing file leaves v untouched
// and returns false.
func LoadJSON(file string, v interface{}) (bool, error) {
	jsonStr, err := os.ReadFile(file)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}

	return true, json.Unmarshal(jsonStr, v)
}

// SaveJSON marshals v into file
func SaveJSON(file string, v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	return WriteFileAtomic(file, out)
}
