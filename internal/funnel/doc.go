// Package funnel implements the lead-capture funnel: the form state store,
// the step sequencer, session continuity with continuation tokens, the
// consent (TCPA) logger, the per-step screens, and the controller that ties
// them together.
//
// Services are explicit objects. Build them once per profile and pass them
// to the consumers that need them:
//
//	cont, err := funnel.NewContinuity(local, transient, funnel.ContinuityOptions{})
//	comp := funnel.NewCompliance(local, funnel.ComplianceOptions{})
//	store := funnel.NewFormStore(cont, logger)
//	f := funnel.New(local, store, cont, comp, logger)
//	step, err := f.Resume(currentURL)
package funnel
