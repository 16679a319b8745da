package rest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/hrsdata/codebook-backend/internal/adapter/postgres/codebookstore"
	"github.com/hrsdata/codebook-backend/internal/app"
	"github.com/hrsdata/codebook-backend/internal/domain"
)

func (a *API) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "ok",
		"version": app.BuildVersion(),
	})
}

func (a *API) getCodebook(c *fiber.Ctx) error {
	source := domain.Source(c.Params("source"))
	year, err := strconv.Atoi(c.Params("year"))
	if err != nil {
		return badRequest(c, "year must be an integer")
	}

	cb, err := a.svc.GetCodebook(c.UserContext(), source, year)
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(cb)
}

func (a *API) listYears(c *fiber.Ctx) error {
	source := domain.Source(c.Params("source"))

	years, err := a.svc.ListYears(c.UserContext(), source)
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"source": source,
		"years":  years,
		"count":  len(years),
	})
}

func (a *API) searchVariables(c *fiber.Ctx) error {
	var filter codebookstore.IndexFilter

	if v := c.Query("source"); v != "" {
		s := domain.Source(v)
		filter.Source = &s
	}
	if v := c.Query("year"); v != "" {
		year, err := strconv.Atoi(v)
		if err != nil {
			return badRequest(c, "year must be an integer")
		}
		filter.Year = &year
	}
	if v := c.Query("section"); v != "" {
		filter.Section = &v
	}
	if v := c.Query("level"); v != "" {
		lvl := domain.Level(v)
		filter.Level = &lvl
	}
	if v := c.Query("search"); v != "" {
		filter.Search = &v
	}
	filter.Limit = c.QueryInt("limit")
	filter.Offset = c.QueryInt("offset")

	rows, err := a.svc.SearchVariables(c.UserContext(), filter)
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"variables": rows,
		"count":     len(rows),
	})
}

func (a *API) temporalLookup(c *fiber.Ctx) error {
	mapping, err := a.svc.TemporalLookup(c.UserContext(), c.Params("name"))
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(mapping)
}

func (a *API) listBaseNames(c *fiber.Ctx) error {
	names, total, err := a.svc.ListBaseNames(c.UserContext(), c.QueryInt("limit"), c.QueryInt("offset"))
	if err != nil {
		return a.respondError(c, err)
	}
	return c.JSON(fiber.Map{
		"base_names": names,
		"count":      len(names),
		"total":      total,
	})
}
