package ui

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"profitpulse/adapters/source"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// handleExport downloads the filtered projects table as CSV or xlsx
func (s *Server) handleExport(c *gin.Context) {
	format := c.DefaultQuery("format", "csv")
	if format != "csv" && format != "xlsx" {
		c.String(http.StatusBadRequest, "unsupported export format %q", format)
		return
	}

	data, filtered := s.buildPage(c.Request.Context(), c.Request.URL.Query(), PageDetails)
	if data.Error != "" {
		c.String(http.StatusBadRequest, "%s", data.Error)
		return
	}

	name := fmt.Sprintf("projects-%s.%s", time.Now().Format("20060102"), format)
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))

	var err error
	if format == "xlsx" {
		c.Header("Content-Type", xlsxContentType)
		err = source.WriteXLSXTo(filtered, c.Writer)
	} else {
		c.Header("Content-Type", "text/csv; charset=utf-8")
		err = source.WriteCSV(filtered, c.Writer)
	}
	if err != nil {
		s.logger.Error("export %s failed: %v", format, err)
	}
}
