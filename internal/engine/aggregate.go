package engine

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/classlens/classlens/internal/artifact"
	"github.com/classlens/classlens/internal/rules"
)

// typeResult is the full per-type outcome of one type pipeline: the
// user-visible ConfigInfo plus the auxiliary detections that feed the
// cross-cutting views and the report derivation.
type typeResult struct {
	info          ConfigInfo
	mfa           bool
	secureChannel bool
	csrfDisabled  bool
	sessionHarden bool
	accessKinds   map[rules.AccessKind]bool
	weakPassword  bool
	debugEnabled  bool
}

// analyze runs the classify, locate, trace, and interpret pipeline over
// every type of the index and folds the results into one Analysis. The
// per-type pipelines are independent, so they run on a small worker pool;
// results are written into an index-tagged slice so classifier order
// survives the merge. Cancellation is checked before each dispatch: a
// canceled run keeps the prefix of completed types and is tagged
// Incomplete.
func (e *Engine) analyze(ctx context.Context, idx *artifact.Index, diags *Collector) *Analysis {
	classified := classify(idx, e.rules.Classifier)

	results, incomplete := e.foldTypes(ctx, classified, diags)

	a := &Analysis{Incomplete: incomplete}
	for i := range results {
		r := &results[i]
		a.Configs = append(a.Configs, r.info)
		name := r.info.ClassName
		if r.mfa {
			a.MFAClasses = append(a.MFAClasses, name)
		}
		if r.secureChannel {
			a.SecureChannelClasses = append(a.SecureChannelClasses, name)
		}
		if r.csrfDisabled {
			a.CSRFDisabledClasses = append(a.CSRFDisabledClasses, name)
		}
		if r.info.HasSessionManagement && r.sessionHarden {
			a.SecureSessionClasses = append(a.SecureSessionClasses, name)
		}
		if r.weakPassword {
			a.WeakPasswordClasses = append(a.WeakPasswordClasses, name)
		}
		if r.debugEnabled {
			a.DebugClasses = append(a.DebugClasses, name)
		}
		if r.accessKinds[rules.AccessRole] {
			a.RBACClasses = append(a.RBACClasses, name)
		} else if r.info.HasAuthorizationRules && !r.accessKinds[rules.AccessPrincipal] {
			// Rules exist but grant only blanket access.
			a.BlanketAccessClasses = append(a.BlanketAccessClasses, name)
		}
	}

	if incomplete {
		return a
	}

	// Cross-cutting sub-reports are independent passes over the same
	// classified set; trace failures here were already recorded by the
	// fold and are skipped silently.
	a.AuthRules = e.collectAuthRules(classified)
	a.AuthProviders = e.collectAuthProviders(idx)
	a.Session, a.CORS, a.CSRF = e.collectConcerns(classified)
	return a
}

// foldTypes dispatches one pipeline per classified type to the worker
// pool. The results slice is indexed by dispatch order, so no reordering
// is needed after the merge. On cancellation the undispatched tail is
// dropped and incomplete=true is returned.
func (e *Engine) foldTypes(ctx context.Context, types []*artifact.Type, diags *Collector) ([]typeResult, bool) {
	if len(types) == 0 {
		return nil, ctx.Err() != nil
	}

	results := make([]typeResult, len(types))
	jobs := make(chan int)
	workers := e.workers
	if workers > len(types) {
		workers = len(types)
	}

	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = e.inspectType(types[i], diags)
			}
		}()
	}

	dispatched := 0
	incomplete := false
dispatch:
	for i := range types {
		if ctx.Err() != nil {
			incomplete = true
			break
		}
		select {
		case <-ctx.Done():
			incomplete = true
			break dispatch
		case jobs <- i:
			dispatched++
		}
	}
	close(jobs)
	wg.Wait()

	return results[:dispatched], incomplete
}

// inspectType runs locate, trace, and interpret for a single classified
// type. A type with no locatable configuration method or an untraceable
// method body is recorded with Inspected=false and default flags: the
// configuration is present but uninspectable, which must stay
// distinguishable from "confirmed absent".
func (e *Engine) inspectType(t *artifact.Type, diags *Collector) typeResult {
	r := typeResult{
		info:        ConfigInfo{ClassName: t.Name},
		accessKinds: make(map[rules.AccessKind]bool),
	}
	r.debugEnabled = t.AnnotationAttr(e.rules.DebugAnnotation, e.rules.DebugAttr) == "true"
	r.weakPassword = e.hasWeakPasswordCall(t)

	m, ok := locateConfigMethod(t, e.rules.Locator)
	if !ok {
		diags.Add(t.Name, "", "no configuration method matches a designated signature")
		return r
	}

	events, err := traceMethod(t, m)
	if err != nil {
		diags.Add(t.Name, m.Name, err.Error())
		return r
	}

	r.info.Inspected = true
	for _, ev := range events {
		if f, matched := interpretFeature(ev, e.rules.Features); matched {
			r.info.apply(f)
		}

		onSecurityContext := strings.Contains(ev.Receiver, e.rules.Features.ReceiverFragment)
		if onSecurityContext && memberIn(ev.Member, e.rules.MFAMembers) {
			r.mfa = true
		}
		if onSecurityContext && memberIn(ev.Member, e.rules.ChannelMembers) {
			r.secureChannel = true
		}
		if kind, matched := e.rules.Authorization.Members[ev.Member]; matched &&
			receiverMatchesAny(ev.Receiver, e.rules.Authorization.ReceiverFragments) {
			r.accessKinds[kind] = true
		}
		if ev.Member == "disable" && strings.Contains(ev.Receiver, e.rules.CSRFConfigurerFragment) {
			r.csrfDisabled = true
		}
		if strings.Contains(ev.Receiver, e.rules.SessionFragment) && memberIn(ev.Member, e.rules.SessionHardening) {
			r.sessionHarden = true
		}
	}
	return r
}

// hasWeakPasswordCall scans every traceable method of the type for a
// hazard call site. Trace failures are ignored here; the config-method
// fold already records them.
func (e *Engine) hasWeakPasswordCall(t *artifact.Type) bool {
	for i := range t.Methods {
		events, err := traceMethod(t, &t.Methods[i])
		if err != nil {
			continue
		}
		for _, ev := range events {
			for _, h := range e.rules.WeakPassword {
				if h.Member != "" && h.Member != ev.Member {
					continue
				}
				if h.ReceiverFragment != "" && !strings.Contains(ev.Receiver, h.ReceiverFragment) {
					continue
				}
				return true
			}
		}
	}
	return false
}

// collectAuthRules rolls up authorization-rule call sites across every
// classified type's configuration method, keyed by member name. Keys are
// map order; Locations within a rule follow classifier and bytecode order.
func (e *Engine) collectAuthRules(types []*artifact.Type) map[string]AuthRule {
	out := make(map[string]AuthRule)
	for _, t := range types {
		m, ok := locateConfigMethod(t, e.rules.Locator)
		if !ok {
			continue
		}
		events, err := traceMethod(t, m)
		if err != nil {
			continue
		}
		for _, ev := range events {
			kind, matched := e.rules.Authorization.Members[ev.Member]
			if !matched || !receiverMatchesAny(ev.Receiver, e.rules.Authorization.ReceiverFragments) {
				continue
			}
			rule := out[ev.Member]
			rule.Member = ev.Member
			rule.Kind = kind
			rule.Count++
			rule.Locations = append(rule.Locations, ev.Loc)
			out[ev.Member] = rule
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// collectAuthProviders classifies authentication-provider types with
// their own predicate set; providers are a distinct type shape, not a
// method inside an enabling-annotated type.
func (e *Engine) collectAuthProviders(idx *artifact.Index) []AuthProvider {
	var out []AuthProvider
	for i := range idx.Types {
		t := &idx.Types[i]
		if via := classifierMatch(t, e.rules.AuthProviders); via != "" {
			out = append(out, AuthProvider{ClassName: t.Name, Via: via})
		}
	}
	return out
}

// collectConcerns derives the session, CORS, and CSRF sub-reports from
// the classified types' configuration-method traces.
func (e *Engine) collectConcerns(types []*artifact.Type) (SessionInfo, ConcernInfo, ConcernInfo) {
	var session SessionInfo
	var cors, csrf ConcernInfo
	hardening := make(map[string]bool)

	for _, t := range types {
		m, ok := locateConfigMethod(t, e.rules.Locator)
		if !ok {
			continue
		}
		events, err := traceMethod(t, m)
		if err != nil {
			continue
		}
		for _, ev := range events {
			if f, matched := interpretFeature(ev, e.rules.Features); matched {
				switch f {
				case rules.FeatureSessionManagement:
					session.Configured = true
				case rules.FeatureCORS:
					cors.Configured = true
				case rules.FeatureCSRF:
					csrf.Configured = true
				}
			}
			if strings.Contains(ev.Receiver, e.rules.SessionFragment) && memberIn(ev.Member, e.rules.SessionHardening) {
				session.Hardened = true
				hardening[ev.Member] = true
			}
			if ev.Member == "disable" {
				if strings.Contains(ev.Receiver, e.rules.CORSConfigurerFragment) {
					cors.Disabled = true
				}
				if strings.Contains(ev.Receiver, e.rules.CSRFConfigurerFragment) {
					csrf.Disabled = true
				}
			}
		}
	}

	for member := range hardening {
		session.Members = append(session.Members, member)
	}
	sort.Strings(session.Members)
	return session, cors, csrf
}
