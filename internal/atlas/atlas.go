// Package atlas holds the head and neck nodal level boundary table used to
// annotate elective nodal coverage. The table is built once at package
// initialisation and never written afterwards, so it can be shared by any
// number of concurrent evaluations without locking.
//
// Boundaries follow the 2013 DAHANCA/EORTC/HKNPCSG/NCIC CTG/NCRI/RTOG/TROG
// consensus guidelines.
package atlas

import (
	"sort"

	"github.com/contourai-mcp-server/internal/domain"
)

var levels = map[string]domain.LevelBoundary{
	"Ia": {
		Cranial:   "Mylohyoid muscle",
		Caudal:    "Platysma muscle",
		Medial:    "Midline (symphysis menti)",
		Lateral:   "Medial edge of anterior belly of digastric muscle",
		Anterior:  "Symphysis menti, platysma muscle",
		Posterior: "Body of hyoid bone / mylohyoid muscle",
	},
	"Ib": {
		Cranial:   "Mylohyoid muscle, cranial edge of submandibular gland",
		Caudal:    "Plane through central part of hyoid bone",
		Medial:    "Lateral edge of anterior belly of digastric muscle",
		Lateral:   "Basilar edge / inner side of mandible, platysma",
		Anterior:  "Symphysis menti",
		Posterior: "Posterior edge of submandibular gland",
	},
	"IIa": {
		Cranial:   "Skull base",
		Caudal:    "Inferior border of hyoid bone",
		Medial:    "Lateral border of internal carotid artery",
		Lateral:   "Medial border of sternocleidomastoid (SCM)",
		Anterior:  "Posterior edge of submandibular gland",
		Posterior: "Posterior border of SCM",
	},
	"IIb": {
		Cranial:   "Skull base",
		Caudal:    "Inferior border of hyoid bone",
		Medial:    "Spinal accessory nerve plane",
		Lateral:   "Medial border of SCM",
		Anterior:  "Posterior border of IIa",
		Posterior: "Posterior border of SCM",
	},
	"III": {
		Cranial:   "Inferior border of hyoid bone",
		Caudal:    "Inferior border of cricoid cartilage",
		Medial:    "Lateral border of carotid artery",
		Lateral:   "Medial border of SCM",
		Anterior:  "Anterior border of sternohyoid muscle",
		Posterior: "Posterior border of SCM",
	},
	"IV": {
		Cranial:   "Inferior border of cricoid cartilage",
		Caudal:    "Clavicle / supraclavicular fossa",
		Medial:    "Lateral border of common carotid artery",
		Lateral:   "Medial border of SCM",
		Anterior:  "Posterior border of sternohyoid muscle",
		Posterior: "Anterior border of trapezius",
	},
	"V": {
		Cranial:   "Cranial edge of hyoid bone body",
		Caudal:    "Plane through transverse cervical vessels",
		Medial:    "Levator scapulae, scalenus muscles",
		Lateral:   "Platysma, skin",
		Anterior:  "Posterior edge of SCM",
		Posterior: "Anterior border of trapezius",
	},
	"VIa": {
		Cranial:   "Caudal border of hyoid bone or submandibular gland",
		Caudal:    "Manubrium sterni",
		Medial:    "Midline",
		Lateral:   "Medial edges of SCM",
		Anterior:  "Platysma, skin",
		Posterior: "Anterior surface of infrahyoid muscles",
	},
	"RPN": {
		Cranial:   "Skull base",
		Caudal:    "Level of hyoid bone",
		Medial:    "Posterior pharyngeal wall",
		Lateral:   "Medial border of internal carotid artery",
		Anterior:  "Pharyngeal constrictor muscles",
		Posterior: "Prevertebral fascia",
	},
}

// Table is the process-wide atlas.
type Table struct{}

// Default returns the shared atlas.
func Default() Table {
	return Table{}
}

// Lookup returns the boundary record for a level code.
func (Table) Lookup(code string) (domain.LevelBoundary, bool) {
	return Lookup(code)
}

// Codes returns all level codes in sorted order.
func (Table) Codes() []string {
	return Codes()
}

// Lookup returns the boundary record for a level code.
func Lookup(code string) (domain.LevelBoundary, bool) {
	b, ok := levels[code]
	return b, ok
}

// Codes returns all level codes in sorted order.
func Codes() []string {
	codes := make([]string, 0, len(levels))
	for code := range levels {
		codes = append(codes, code)
	}
	sort.Strings(codes)
	return codes
}

// Annotate maps each included level to its boundary record. Levels the
// atlas does not know are left out.
func Annotate(a domain.Atlas, included []string) map[string]domain.LevelBoundary {
	out := make(map[string]domain.LevelBoundary, len(included))
	for _, code := range included {
		if b, ok := a.Lookup(code); ok {
			out[code] = b
		}
	}
	return out
}
