package mods

import (
	"errors"
	"fmt"
	"keel/common"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml"
)

// InitModule creates a new module file with the given name at the given path.
// The module compiles `<name>.ast.yaml` with the default options.
func InitModule(name, path string) error {
	// convert the module directory to the path to module file
	modFilePath := filepath.Join(path, common.KeelModuleFileName)

	// check to see if a module already exists
	_, err := os.Stat(modFilePath)
	if err == nil {
		return errors.New("module file already exists")
	}

	if !os.IsNotExist(err) {
		return fmt.Errorf("module file error: %w", err)
	}

	// validate module name
	if !IsValidIdentifier(name) {
		return errors.New("module name must be a valid identifier")
	}

	unroll, save, attempts := true, false, common.DefaultMaxPrepareAttempts
	mod := &tomlModule{
		Name:       name,
		Source:     name + ".ast.yaml",
		SourceText: name + common.KeelFileExt,
		Output:     name + ".ll",
		Version:    common.KeelVersion,
		Options: &tomlOptions{
			UnrollConstants:    &unroll,
			AllowSave:          &save,
			MaxPrepareAttempts: &attempts,
		},
	}

	// encode and save module to file
	f, err := os.Create(modFilePath)
	if err != nil {
		return fmt.Errorf("error creating module file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(mod); err != nil {
		return fmt.Errorf("error encoding TOML: %w", err)
	}

	return nil
}
