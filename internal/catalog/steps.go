package catalog

import (
	"strconv"

	"go.uber.org/zap"
)

// Step describes the result of one validation step.
type Step struct {
	Initial int
	Dropped int
	Left    int
}

// entry is the part of a record the validation steps look at.
type entry struct {
	id     string
	name   string
	vector []float64
	model  string
}

type validationStep struct {
	name string
	keep func(e entry, ref *reference) bool
}

// reference captures what every kept record must agree on.
type reference struct {
	model     string
	dimension int
}

var validationSteps = []validationStep{
	{
		name: "missing_name",
		keep: func(e entry, _ *reference) bool { return e.id != "" && e.name != "" },
	},
	{
		name: "empty_vector",
		keep: func(e entry, _ *reference) bool { return len(e.vector) > 0 },
	},
	{
		name: "foreign_model",
		keep: func(e entry, ref *reference) bool { return ref.model == "" || e.model == "" || e.model == ref.model },
	},
	{
		name: "dimension",
		keep: func(e entry, ref *reference) bool {
			if ref.dimension == 0 {
				ref.dimension = len(e.vector)
			}
			return len(e.vector) == ref.dimension
		},
	},
}

// validate runs every step over records in order and logs what each dropped.
func validate[T any](log *zap.Logger, kind string, records []T, view func(T) entry, model string) []T {
	ref := &reference{model: model}

	for _, step := range validationSteps {
		initial := len(records)
		kept := records[:0:0]
		for _, rec := range records {
			if step.keep(view(rec), ref) {
				kept = append(kept, rec)
			}
		}
		records = kept

		info := Step{Initial: initial, Dropped: initial - len(records), Left: len(records)}
		if info.Dropped > 0 {
			log.Warn("catalog records dropped",
				zap.String("catalog", kind),
				zap.String("step", step.name),
				zap.Int("initial", info.Initial),
				zap.Int("dropped", info.Dropped),
				zap.Int("left", info.Left),
			)
			continue
		}
		log.Debug("catalog validation step",
			zap.String("catalog", kind),
			zap.String("step", step.name),
			zap.Int("left", info.Left),
		)
	}

	return records
}

func roleEntry(r Role) entry {
	return entry{id: intID(r.ID), name: r.Name, vector: r.Vector, model: r.Model}
}

func courseEntry(c Course) entry {
	return entry{id: intID(c.ID), name: c.Title, vector: c.Vector, model: c.Model}
}

func mentorEntry(m Mentor) entry {
	return entry{id: m.ID, name: m.Name, vector: m.Vector, model: m.Model}
}

func intID(id int) string {
	if id <= 0 {
		return ""
	}
	return strconv.Itoa(id)
}
