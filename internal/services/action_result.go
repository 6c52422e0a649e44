package services

// ResultKind tags the variant held by an ActionResult
type ResultKind int

const (
	// ResultDone means the action succeeded and the caller stays where it is
	ResultDone ResultKind = iota
	// ResultRedirect means the action succeeded and the caller should navigate to Path
	ResultRedirect
	// ResultFailed means the write failed; Message is safe to show to the user
	ResultFailed
)

func (k ResultKind) String() string {
	switch k {
	case ResultDone:
		return "done"
	case ResultRedirect:
		return "redirect"
	case ResultFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// EffectKind tags a side effect the caller must carry out
type EffectKind int

const (
	// EffectInvalidate marks the cached view at Path as stale
	EffectInvalidate EffectKind = iota
)

type Effect struct {
	Kind EffectKind
	Path string
}

// Invalidate builds an EffectInvalidate for path
func Invalidate(path string) Effect {
	return Effect{Kind: EffectInvalidate, Path: path}
}

// ActionResult is what a form action hands back to its transport. The
// action itself never redirects or touches the cache; it describes what
// should happen and leaves the mechanism to the caller.
type ActionResult struct {
	Kind    ResultKind
	Path    string
	Message string
	Effects []Effect
}

func Done(effects ...Effect) *ActionResult {
	return &ActionResult{Kind: ResultDone, Effects: effects}
}

func Redirect(path string, effects ...Effect) *ActionResult {
	return &ActionResult{Kind: ResultRedirect, Path: path, Effects: effects}
}

// Failed carries no effects: nothing changed, so nothing is stale
func Failed(message string) *ActionResult {
	return &ActionResult{Kind: ResultFailed, Message: message}
}
