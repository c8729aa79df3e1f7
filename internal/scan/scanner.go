package scan

import (
	"context"
	"go/types"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/sync/errgroup"
	"golang.org/x/tools/go/packages"

	"github.com/dusk-indust/capform/internal/form"
	"github.com/dusk-indust/capform/internal/index"
	"github.com/dusk-indust/capform/internal/load"
	"github.com/dusk-indust/capform/internal/manifest"
	"github.com/dusk-indust/capform/internal/prescan"
)

// Finding records one positive probe: the named type provides the capability.
// Which trailing arity matched is deliberately not part of the record.
type Finding struct {
	Capability string `json:"capability"`
	TypeID     string `json:"typeId"`
	TypeName   string `json:"typeName"`
	Package    string `json:"package"`
}

// Result summarizes a completed scan.
type Result struct {
	Manifest        *manifest.Manifest
	Findings        []Finding
	PackagesScanned int
	PackagesSkipped int
	TypesProbed     int
	QueriesRun      int
}

// Scanner runs capability scans against a Go project and persists the
// outcomes into a Store. Progress reporting is delegated to a
// ProgressReporter.
type Scanner struct {
	cfg      Config
	store    index.Store
	progress *ProgressReporter
}

// NewScanner creates a Scanner wired with a ProgressReporter.
func NewScanner(cfg Config, store index.Store) *Scanner {
	return &Scanner{cfg: cfg, store: store, progress: NewProgressReporter()}
}

// Progress returns a channel that emits per-package progress events.
func (s *Scanner) Progress() <-chan ProgressEvent {
	return s.progress.Subscribe()
}

// Close shuts down the progress reporter. Callers should invoke this when the
// scanner is no longer needed.
func (s *Scanner) Close() {
	s.progress.Close()
}

// Run executes the full pipeline: locate and resolve the manifest, build the
// syntactic prescan index, load type-checked packages, probe every exported
// named type against every query, and persist positive outcomes.
func (s *Scanner) Run(ctx context.Context) (*Result, error) {
	root, err := load.FindModuleRoot(s.cfg.ProjectRoot)
	if err != nil {
		return nil, err
	}

	mpath := s.cfg.ManifestPath
	if mpath == "" {
		mpath, err = manifest.Find(root)
		if err != nil {
			return nil, err
		}
	}
	man, err := manifest.Load(mpath)
	if err != nil {
		return nil, err
	}

	pre, err := prescan.Build(root, man.Exclude)
	if err != nil {
		return nil, err
	}

	pkgs, err := load.Load(ctx, root, man.Packages)
	if err != nil {
		return nil, err
	}

	queries, err := man.Resolve(load.NewTypeIndex(pkgs))
	if err != nil {
		return nil, err
	}

	if err := s.store.InitSchema(ctx); err != nil {
		return nil, err
	}
	for _, rq := range queries {
		err := s.store.AddCapability(ctx, index.CapabilityNode{
			Name:   rq.Capability,
			Method: rq.Method,
			Shape:  rq.Shape(),
		})
		if err != nil {
			return nil, err
		}
	}

	res := &Result{Manifest: man, QueriesRun: len(queries)}

	// Probe packages in parallel; workers only read immutable type data and
	// write to their own slot, so no locking is needed until persistence.
	outcomes := make([]pkgOutcome, len(pkgs))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.workers())

	for i, pkg := range pkgs {
		s.emit(ProgressEvent{Package: pkg.PkgPath, Status: ProgressPending})

		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			s.emit(ProgressEvent{Package: pkg.PkgPath, Status: ProgressWorking})
			outcomes[i] = s.probePackage(root, pre, pkg, queries)
			if outcomes[i].skipped {
				s.emit(ProgressEvent{
					Package: pkg.PkgPath,
					Status:  ProgressSkipped,
					Message: "no queried method names declared",
				})
			} else {
				s.emit(ProgressEvent{Package: pkg.PkgPath, Status: ProgressComplete})
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Persist sequentially: the kuzu connection is not safe for concurrent
	// writes, and serial writes keep the index byte-for-byte reproducible.
	for _, oc := range outcomes {
		if oc.skipped {
			res.PackagesSkipped++
			continue
		}
		res.PackagesScanned++
		if err := s.persist(ctx, oc); err != nil {
			s.emit(ProgressEvent{
				Package: oc.node.Path,
				Status:  ProgressFailed,
				Message: err.Error(),
			})
			return nil, err
		}
		res.TypesProbed += len(oc.types)
		res.Findings = append(res.Findings, oc.findings...)
	}

	sort.Slice(res.Findings, func(i, j int) bool {
		a, b := res.Findings[i], res.Findings[j]
		if a.Capability != b.Capability {
			return a.Capability < b.Capability
		}
		return a.TypeID < b.TypeID
	})
	return res, nil
}

// persist writes one package outcome into the store.
func (s *Scanner) persist(ctx context.Context, oc pkgOutcome) error {
	if err := s.store.AddPackage(ctx, oc.node); err != nil {
		return err
	}
	for _, tn := range oc.types {
		if err := s.store.AddType(ctx, tn); err != nil {
			return err
		}
	}
	for _, f := range oc.findings {
		if err := s.store.AddProvides(ctx, f.TypeID, f.Capability); err != nil {
			return err
		}
	}
	return nil
}

// pkgOutcome collects everything one worker produced for one package.
type pkgOutcome struct {
	node     index.PackageNode
	types    []index.TypeNode
	findings []Finding
	skipped  bool
}

// probePackage evaluates every query against every exported named type in pkg.
// The prescan lets whole packages be skipped when none of the queried method
// names can possibly resolve there.
func (s *Scanner) probePackage(root string, pre *prescan.Index, pkg *packages.Package, queries []manifest.ResolvedQuery) (oc pkgOutcome) {
	dir := packageDir(root, pkg)
	if dir != "" && allSkippable(pre, dir, queries) {
		oc.skipped = true
		return oc
	}

	oc.node = index.PackageNode{Path: pkg.PkgPath, Dir: dir}
	oc.node.Files = len(pkg.GoFiles)
	if facts := pre.Facts(dir); facts != nil {
		oc.node.LOC = facts.LOC
	}

	for _, named := range load.NamedTypes(pkg) {
		name := named.Obj().Name()
		tn := index.TypeNode{
			ID:      index.TypeID(pkg.PkgPath, name),
			Name:    name,
			PkgPath: pkg.PkgPath,
			Kind:    kindOf(named),
		}
		oc.types = append(oc.types, tn)

		for _, rq := range queries {
			var ok bool
			if rq.IsExact {
				ok = form.HasExactMethod(named, rq.Method, rq.Sig)
			} else {
				ok = form.HasMethodForm(named, rq.Method, rq.Form)
			}
			if ok {
				oc.findings = append(oc.findings, Finding{
					Capability: rq.Capability,
					TypeID:     tn.ID,
					TypeName:   name,
					Package:    pkg.PkgPath,
				})
			}
		}
	}
	return oc
}

// allSkippable reports whether the prescan proves that no query method can
// resolve anywhere in the package at dir.
func allSkippable(pre *prescan.Index, dir string, queries []manifest.ResolvedQuery) bool {
	for _, rq := range queries {
		if !pre.CanSkip(dir, rq.Method) {
			return false
		}
	}
	return len(queries) > 0
}

// packageDir returns pkg's directory relative to root, or "" when the package
// has no files or lives outside the module.
func packageDir(root string, pkg *packages.Package) string {
	if len(pkg.GoFiles) == 0 {
		return ""
	}
	rel, err := filepath.Rel(root, filepath.Dir(pkg.GoFiles[0]))
	if err != nil || strings.HasPrefix(rel, "..") || filepath.IsAbs(rel) {
		return ""
	}
	return rel
}

// kindOf classifies a named type by its underlying type.
func kindOf(named *types.Named) index.TypeKind {
	switch named.Underlying().(type) {
	case *types.Struct:
		return index.TypeKindStruct
	case *types.Interface:
		return index.TypeKindInterface
	default:
		return index.TypeKindOther
	}
}

// emit forwards a progress event to the reporter.
func (s *Scanner) emit(ev ProgressEvent) {
	s.progress.Emit(ev)
}

// ProvidersByCapability groups findings by capability name.
func ProvidersByCapability(findings []Finding) map[string][]Finding {
	out := make(map[string][]Finding)
	for _, f := range findings {
		out[f.Capability] = append(out[f.Capability], f)
	}
	return out
}
