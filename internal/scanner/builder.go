// internal/scanner/builder.go
package scanner

import (
	cfg "github.com/tamzrod/nanoradar-conftool/internal/config"
)

// Build converts the scan section of the config into a Scanner on rx.
func Build(sc cfg.ScanConfig, rx Receiver) (*Scanner, error) {
	return New(
		Config{
			Timeout:     sc.Timeout(),
			ReceiveWait: sc.ReceiveWait(),
			Mask:        sc.IDMask,
			Pattern:     sc.IDPattern,
		},
		rx,
		nil,
	)
}
