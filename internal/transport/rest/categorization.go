package rest

import (
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/hrsdata/codebook-backend/internal/categorize"
	"github.com/hrsdata/codebook-backend/internal/domain"
	svc "github.com/hrsdata/codebook-backend/internal/service/codebook"
)

// categorizationView projects one slice of a full categorization into the
// response body for its route.
type categorizationView func(cat *categorize.Categorization) any

func fullView(cat *categorize.Categorization) any { return cat }

func sectionsView(cat *categorize.Categorization) any {
	return fiber.Map{
		"by_section":    cat.BySection,
		"count":         len(cat.BySection),
		"years_covered": cat.YearsCovered,
	}
}

func levelsView(cat *categorize.Categorization) any {
	return fiber.Map{
		"by_level":      cat.ByLevel,
		"count":         len(cat.ByLevel),
		"years_covered": cat.YearsCovered,
	}
}

func typesView(cat *categorize.Categorization) any {
	return fiber.Map{
		"by_type":       cat.ByType,
		"count":         len(cat.ByType),
		"years_covered": cat.YearsCovered,
	}
}

func baseNamesView(cat *categorize.Categorization) any {
	return fiber.Map{
		"by_base_name":  cat.ByBaseName,
		"count":         len(cat.ByBaseName),
		"years_covered": cat.YearsCovered,
	}
}

func specialView(cat *categorize.Categorization) any {
	return fiber.Map{
		"special_categories": cat.Special,
		"years_covered":      cat.YearsCovered,
	}
}

func (a *API) categorization(view categorizationView) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var filter svc.CategorizationFilter

		if v := c.Query("year"); v != "" {
			year, err := strconv.Atoi(v)
			if err != nil {
				return badRequest(c, "year must be an integer")
			}
			filter.Year = &year
		}
		if v := c.Query("source"); v != "" {
			src := domain.Source(v)
			filter.Source = &src
		}
		if v := c.Query("era"); v != "" {
			era := domain.Era(v)
			filter.Era = &era
		}

		cat, err := a.svc.Categorize(c.UserContext(), filter)
		if err != nil {
			return a.respondError(c, err)
		}
		return c.JSON(view(cat))
	}
}
