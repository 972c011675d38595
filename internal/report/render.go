// Package report turns an aggregation snapshot into a text report for photographers.
package report

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"strings"
	"text/template"

	"github.com/i474232898/shutterscout/internal/common"
	"github.com/i474232898/shutterscout/internal/scout"
)

const reportTemplate = `ShutterScout report for {{ where .Result.Location }}
Collected: {{ .CollectedAt.Format "2006-01-02 15:04 MST" }} (snapshot {{ .ID }})
Coordinates: {{ coords .Result.Location.Latitude .Result.Location.Longitude }} ({{ .Result.Location.Timezone }})

Sun today (UTC)
  Sunrise:    {{ .Result.SunTimes.Sunrise }}
  Sunset:     {{ .Result.SunTimes.Sunset }}
  Day length: {{ .Result.SunTimes.DayLength }}

Forecast
{{- range .Result.Weather }}
  {{ .Time }}: {{ printf "%.1f" .TemperatureMin }}..{{ printf "%.1f" .TemperatureMax }} C, clouds {{ .CloudCover }}%, rain {{ .PrecipitationProbability }}%, visibility {{ printf "%.1f" .Visibility }} km, wind {{ printf "%.1f" .WindSpeed }}, humidity {{ .Humidity }}%
{{- else }}
  no forecast days returned
{{- end }}

Places
{{- $photos := .Result.PhotosByPlace }}
{{- range $i, $p := .Result.Places }}
  {{ inc $i }}. {{ $p.Name }} ({{ coords $p.Latitude $p.Longitude }})
{{- with index $photos $p.Name }}
{{- range . }}
       - {{ .Title }}: {{ .URL }}
{{- end }}
{{- else }}
       no sample photos found
{{- end }}
{{- else }}
  no places found nearby
{{- end }}
`

var tmpl = template.Must(template.New("report").Funcs(template.FuncMap{
	"where": func(l scout.Location) string {
		return common.JoinNonEmpty(", ", l.City, l.Region, l.Country)
	},
	"coords": common.LatLon,
	"inc":    func(i int) int { return i + 1 },
}).Parse(reportTemplate))

// Render writes the plain-text report for snapshot to w.
func Render(w io.Writer, snapshot scout.Snapshot) error {
	if err := tmpl.Execute(w, snapshot); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}

// Generate returns the narrated report when narrator is set and succeeds,
// otherwise the plain-text report.
func Generate(ctx context.Context, snapshot scout.Snapshot, narrator *Narrator) (string, error) {
	if narrator != nil {
		text, err := narrator.Narrate(ctx, snapshot.Result)
		if err == nil {
			return text, nil
		}
		log.Printf("WARN: narration failed, falling back to plain report: %v", err)
	}

	var b strings.Builder
	if err := Render(&b, snapshot); err != nil {
		return "", err
	}
	return b.String(), nil
}

// WriteFile writes the report artifact to path.
func WriteFile(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}
	log.Printf("INFO: report written to %s", path)
	return nil
}
