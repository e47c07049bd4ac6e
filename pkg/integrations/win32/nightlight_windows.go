//go:build windows

package win32

import (
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const (
	nightLightKey = `Software\Microsoft\Windows\CurrentVersion\CloudStore\Store\DefaultAccount\Current\` +
		`default$windows.data.bluelightreduction.bluelightreductionstate\` +
		`windows.data.bluelightreduction.bluelightreductionstate`
	nightLightValue = "Data"
)

func readNightLightBlob() ([]byte, error) {
	key, err := registry.OpenKey(registry.CURRENT_USER, nightLightKey, registry.QUERY_VALUE)
	if err != nil {
		return nil, fmt.Errorf("failed to open night light key: %w", err)
	}
	defer key.Close()

	data, _, err := key.GetBinaryValue(nightLightValue)
	if err != nil {
		return nil, fmt.Errorf("failed to read night light state: %w", err)
	}
	return data, nil
}

func writeNightLightBlob(data []byte) error {
	key, err := registry.OpenKey(registry.CURRENT_USER, nightLightKey, registry.SET_VALUE)
	if err != nil {
		return fmt.Errorf("failed to open night light key: %w", err)
	}
	defer key.Close()

	if err := key.SetBinaryValue(nightLightValue, data); err != nil {
		return fmt.Errorf("failed to write night light state: %w", err)
	}
	return nil
}

func updateNightLight(edit func([]byte) ([]byte, error)) error {
	data, err := readNightLightBlob()
	if err != nil {
		return err
	}
	updated, err := edit(data)
	if err != nil {
		return err
	}
	return writeNightLightBlob(updated)
}
