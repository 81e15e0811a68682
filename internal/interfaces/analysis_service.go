package interfaces

import "github.com/ternarybob/folio/internal/models"

// AnalysisService derives presentation metadata from a unit's markdown body
// without rendering it
type AnalysisService interface {
	// Analyze walks the markdown AST and returns word count, reading time,
	// excerpt and heading outline
	Analyze(unit *models.ContentUnit) (*models.BodyAnalysis, error)
}
