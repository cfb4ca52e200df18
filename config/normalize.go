package config

import (
	"strings"

	"dupefinder/utils"
)

func (c *Config) normalize() error {
	c.Search.Strategy = lowerTrim(c.Search.Strategy, "pixel")
	c.Search.Resampler = lowerTrim(c.Search.Resampler, Default().Search.Resampler)
	c.Search.Filter = lowerTrim(c.Search.Filter, Default().Search.Filter)
	c.Logging.Level = lowerTrim(c.Logging.Level, "info")
	c.Logging.Format = lowerTrim(c.Logging.Format, "console")

	var err error
	if c.Logging.File, err = utils.ExpandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return err
	}
	if c.Report.Database, err = utils.ExpandPath(strings.TrimSpace(c.Report.Database)); err != nil {
		return err
	}
	if c.Report.Enabled && c.Report.Database == "" {
		c.Report.Database = utils.GetDefaultReportPath()
	}
	return nil
}

func lowerTrim(value, fallback string) string {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return fallback
	}
	return value
}
