// Package report renders a project and its estimation results into a
// plain-text design report. Formatting is total: missing optional data
// renders as placeholders, never as an error, and identical inputs produce
// byte-identical output.
package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/lumiflow/backend/internal/catalog"
	"github.com/lumiflow/backend/internal/models"
)

var whitespace = regexp.MustCompile(`\s+`)

// Formatter renders design reports. It needs the catalog to resolve placed
// light points back to product names.
type Formatter struct {
	catalog *catalog.Catalog
	prices  *message.Printer
}

// NewFormatter creates a report formatter. Prices are grouped with the
// Vietnamese locale to match the catalog's VND pricing.
func NewFormatter(cat *catalog.Catalog) *Formatter {
	return &Formatter{
		catalog: cat,
		prices:  message.NewPrinter(language.Vietnamese),
	}
}

// Filename returns the export filename for a project, with whitespace runs in
// the project name replaced by underscores.
func Filename(projectName string) string {
	return "Report_" + whitespace.ReplaceAllString(projectName, "_") + ".txt"
}

// Format renders the full report.
func (f *Formatter) Format(project *models.Project, results *models.LightingCalculationResults) string {
	var b strings.Builder

	b.WriteString("LIGHTING DESIGN REPORT\n")
	b.WriteString("================================\n\n")
	fmt.Fprintf(&b, "PROJECT: %s\n", project.Name)
	fmt.Fprintf(&b, "Client: %s\n", project.ClientInfo.Name)
	fmt.Fprintf(&b, "Project type: %s\n", f.spaceType(project.SpaceInfo))
	fmt.Fprintf(&b, "Space: %s - %s m²\n\n", f.roomType(project.SpaceInfo), areaOrPlaceholder(project.SpaceInfo.Area))

	b.WriteString("LIGHTING PREFERENCES:\n")
	fmt.Fprintf(&b, "- Color temperature: %s\n", project.Preferences.LightTemperature)
	fmt.Fprintf(&b, "- Brightness: %s\n", project.Preferences.LightBrightness)
	fmt.Fprintf(&b, "- Style: %s\n", project.Preferences.LightingStyle)
	fmt.Fprintf(&b, "- Usage purposes: %s\n\n", purposes(project.Preferences.UsagePurposes))

	b.WriteString("CALCULATED METRICS & RECOMMENDATIONS:\n")
	fmt.Fprintf(&b, "- Estimated average illuminance: %d Lux\n", results.AverageLux)
	fmt.Fprintf(&b, "- Estimated uniformity (U0): %s\n\n", strconv.FormatFloat(results.Uniformity, 'g', -1, 64))

	b.WriteString("RECOMMENDED PRODUCTS:\n")
	if len(results.RecommendedProducts) > 0 {
		for _, p := range results.RecommendedProducts {
			fmt.Fprintf(&b, "- %s (%s): %dW, %dlm, %dK, Price: %sđ\n",
				p.Name, p.Type, p.Power, p.Lumens, p.ColorTemperature, f.prices.Sprintf("%d", p.Price))
		}
	} else {
		b.WriteString("- No products recommended yet.\n")
	}
	fmt.Fprintf(&b, "\nEstimated total cost: %s VND\n\n", f.prices.Sprintf("%d", results.TotalCost))

	b.WriteString("FLOOR PLAN LAYOUT:\n")
	if project.FloorPlan != nil {
		b.WriteString("(Floor plan attached with marked light positions - simulated)\n")
		if len(project.DesignData.LightPoints) > 0 {
			for i, lp := range project.DesignData.LightPoints {
				fmt.Fprintf(&b, "  Light %d: %s (%s) at (x:%.2f%%, y:%.2f%%)\n",
					i+1, lp.FixtureType, f.resolveName(lp), lp.X, lp.Y)
			}
		} else {
			b.WriteString("  No lights placed on the floor plan yet.\n")
		}
	} else {
		b.WriteString("(No floor plan provided)\n")
	}
	b.WriteString("\n")

	b.WriteString("VISUAL CONCEPT:\n")
	if len(project.InteriorPhotos) > 0 {
		b.WriteString("(Lighting effects simulated on the provided interior photos)\n")
	} else {
		b.WriteString("(No interior photos available for concept rendering)\n")
	}
	b.WriteString("\n")

	b.WriteString("SUGGESTED LIGHTING SCENES (EXAMPLES):\n")
	b.WriteString("- Relaxation: 50% of downlights on (warm), spotlights off.\n")
	b.WriteString("- Work/Reading: 100% of downlights on (neutral), task spotlights on.\n")
	b.WriteString("- Hosting: 80% of downlights on, accent lights on (if any).\n\n")

	b.WriteString("NOTE: This is a preliminary report based on the provided information and simulated calculations.\n")

	return b.String()
}

// resolveName maps a placed light point to a product name: its linked catalog
// product first, the first product of its category second, and the raw
// category when neither resolves.
func (f *Formatter) resolveName(lp models.DesignLightPoint) string {
	if lp.ProductID != "" {
		if p, ok := f.catalog.ProductByID(lp.ProductID); ok {
			return p.Name
		}
	}
	if p, ok := f.catalog.FirstOfType(lp.FixtureType); ok {
		return p.Name
	}
	return string(lp.FixtureType)
}

func (f *Formatter) spaceType(space models.SpaceInfo) string {
	if space.ProjectType == models.ProjectTypeOther && space.CustomProjectType != "" {
		return fmt.Sprintf("%s (%s)", space.ProjectType, space.CustomProjectType)
	}
	return string(space.ProjectType)
}

func (f *Formatter) roomType(space models.SpaceInfo) string {
	if space.RoomType == models.RoomOther && space.CustomRoomType != "" {
		return fmt.Sprintf("%s (%s)", space.RoomType, space.CustomRoomType)
	}
	return string(space.RoomType)
}

func areaOrPlaceholder(area *float64) string {
	if area == nil || *area <= 0 {
		return "N/A"
	}
	return strconv.FormatFloat(*area, 'g', -1, 64)
}

func purposes(list []models.UsagePurpose) string {
	if len(list) == 0 {
		return "not yet set"
	}
	parts := make([]string, len(list))
	for i, p := range list {
		parts[i] = string(p)
	}
	return strings.Join(parts, ", ")
}
