package dice

import "go.uber.org/zap"

// Roller wraps a Source and logs every roll at debug level.
// It also satisfies Source so that it can be handed to code that only needs
// raw uniform draws.
type Roller struct {
	src    Source
	logger *zap.Logger
}

// NewLoggedRoller creates a Roller that rolls with src and logs to logger.
//
// Precondition: src and logger must be non-nil.
func NewLoggedRoller(src Source, logger *zap.Logger) *Roller {
	return &Roller{src: src, logger: logger}
}

// Intn draws from the underlying source without logging.
func (r *Roller) Intn(n int) int { return r.src.Intn(n) }

// Roll evaluates e and logs the dice, modifier and total.
func (r *Roller) Roll(e Expression) Result {
	res := Roll(e, r.src)
	r.logger.Debug("dice roll",
		zap.String("expression", res.Expression),
		zap.Ints("dice", res.Dice),
		zap.Int("modifier", res.Modifier),
		zap.Int("total", res.Total()),
	)
	return res
}

// Check rolls a percentile die and reports whether it landed under chance.
// A chance of 0 never succeeds and 100 always does.
//
// Postcondition: logs label, chance, the roll, and the outcome.
func (r *Roller) Check(label string, chance int) bool {
	roll := r.src.Intn(100)
	ok := roll < chance
	r.logger.Debug("percentile check",
		zap.String("check", label),
		zap.Int("chance", chance),
		zap.Int("roll", roll),
		zap.Bool("success", ok),
	)
	return ok
}
