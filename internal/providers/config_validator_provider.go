package providers

import (
	"errors"

	"github.com/gookit/validate"

	"github.com/TommyMaglietto/SaveOneMorePerson-Market-Research-Site/internal/structures"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

func (cv *CnfValidator) Validate() error {
	v := validate.Struct(cv.conf)
	if !v.Validate() {
		return v.Errors
	}

	// Cross-field rules the tag syntax cannot express.
	if cv.conf.RateStore.Backend == "redis" && cv.conf.RateStore.Addr == "" {
		return errors.New("rateStore.addr is required when backend is redis")
	}
	if cv.conf.Audit.Enabled && cv.conf.Audit.FilePath == "" {
		return errors.New("audit.filePath is required when audit is enabled")
	}
	return nil
}
