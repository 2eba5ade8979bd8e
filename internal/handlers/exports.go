package handlers

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/gofiber/fiber/v2"

	"github.com/trentd187/domino-tournament/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// sendWorkbook renders a workbook into memory first so a failure can still produce a JSON
// error instead of a truncated download.
func sendWorkbook(c *fiber.Ctx, filename string, render func(ctx context.Context, w io.Writer) error) error {
	var buf bytes.Buffer
	if err := render(c.UserContext(), &buf); err != nil {
		return respondError(c, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Attachment(filename)
	return c.Send(buf.Bytes())
}

// ExportAssignment handles GET /api/v1/exports/rounds/:round/assignment.xlsx.
func ExportAssignment(exp *report.Exporter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		round, ok := intParam(c, "round")
		if !ok {
			return badRequest(c, "round must be a positive integer")
		}
		return sendWorkbook(c, fmt.Sprintf("round-%d-assignment.xlsx", round), func(ctx context.Context, w io.Writer) error {
			return exp.WriteAssignment(ctx, w, round)
		})
	}
}

// ExportTableSheets handles GET /api/v1/exports/rounds/:round/tables.xlsx.
func ExportTableSheets(exp *report.Exporter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		round, ok := intParam(c, "round")
		if !ok {
			return badRequest(c, "round must be a positive integer")
		}
		return sendWorkbook(c, fmt.Sprintf("round-%d-tables.xlsx", round), func(ctx context.Context, w io.Writer) error {
			return exp.WriteTableSheets(ctx, w, round)
		})
	}
}

// ExportRanking handles GET /api/v1/exports/ranking.xlsx.
func ExportRanking(exp *report.Exporter) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return sendWorkbook(c, "ranking.xlsx", exp.WriteRanking)
	}
}
