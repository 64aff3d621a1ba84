package pdf

import (
	"bytes"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

var pdfcpuConfig sync.Once

// Verify runs pdfcpu structural validation on a rendered document.
func Verify(doc []byte) error {
	pdfcpuConfig.Do(func() {
		// Keep pdfcpu from creating its configuration directory.
		model.ConfigPath = "disable"
	})
	conf := model.NewDefaultConfiguration()
	return api.Validate(bytes.NewReader(doc), conf)
}
