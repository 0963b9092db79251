package ocr

import (
	"regexp"
	"strings"
	"time"

	"tariffapi/internal/model"
)

// candidatePattern matches "Origin - Destination = 450". Prices are whole numbers only.
var candidatePattern = regexp.MustCompile(`([A-ZÇĞİÖŞÜa-zçğıöşü\s]+)\s*-\s*([A-ZÇĞİÖŞÜa-zçğıöşü\s]+)\s*=\s*(\d+)`)

// ExtractCandidates scans recognized text for route/price triples in order of appearance.
// The result is never nil.
func ExtractCandidates(text string, now time.Time) []model.Candidate {
	out := []model.Candidate{}
	stamp := now.Format(model.CandidateTimeLayout)
	for _, m := range candidatePattern.FindAllStringSubmatch(text, -1) {
		origin := strings.TrimSpace(m[1])
		destination := strings.TrimSpace(m[2])
		if origin == "" || destination == "" {
			continue
		}
		out = append(out, model.Candidate{
			Origin:      origin,
			Destination: destination,
			Price:       strings.TrimSpace(m[3]),
			ExtractedAt: stamp,
		})
	}
	return out
}
