package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/custodia-labs/reveal-cli/internal/core/domain"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driven"
	"github.com/custodia-labs/reveal-cli/internal/core/ports/driving"
	"github.com/custodia-labs/reveal-cli/internal/logger"
)

// Ensure QueryService implements the interface.
var _ driving.QueryService = (*QueryService)(nil)

// QueryService runs locators through parse, dispatch and the result pipeline.
type QueryService struct {
	registry      driven.AdapterRegistry
	timeout       time.Duration
	defaultBudget domain.BudgetSpec
}

// NewQueryService creates a query service.
// A zero timeout leaves adapter calls bounded only by the caller's context.
func NewQueryService(registry driven.AdapterRegistry, timeout time.Duration, defaultBudget domain.BudgetSpec) *QueryService {
	return &QueryService{
		registry:      registry,
		timeout:       timeout,
		defaultBudget: defaultBudget,
	}
}

// queryPlan is everything the pipeline needs from the query string.
type queryPlan struct {
	filters []domain.FilterCondition
	control domain.ResultControl
	fields  []string
	budget  domain.BudgetSpec
}

// Query resolves one locator into an envelope.
func (s *QueryService) Query(ctx context.Context, raw string) (*domain.Envelope, error) {
	logger.Section("Query")
	logger.Debug("Locator: %q", raw)

	loc, err := domain.ParseLocator(raw)
	if err != nil {
		return nil, err
	}
	logger.Debug("Scheme: %s, Resource: %q, Element: %q, Params: %d",
		loc.Scheme, loc.Resource, loc.Element, len(loc.Query))

	adapter, err := s.registry.Get(loc.Scheme)
	if err != nil {
		return nil, err
	}
	caps := adapter.DescribeCapabilities()

	plan, err := s.plan(loc, caps)
	if err != nil {
		return nil, err
	}

	if normalizer, ok := adapter.(driven.LocatorNormalizer); ok {
		normalized, err := normalizer.NormalizeLocator(loc)
		if err != nil {
			return nil, s.wrapAdapterError(ctx, loc, err)
		}
		loc = normalized
		logger.Debug("Normalized: Resource: %q, Element: %q", loc.Resource, loc.Element)
	}

	result, elements, err := s.resolve(ctx, adapter, loc, caps)
	if err != nil {
		return nil, err
	}

	env, err := s.execute(loc, adapter, result, plan)
	if err != nil {
		return nil, err
	}
	env.AvailableElements = elements
	return env, nil
}

// plan parses every query-string concern. It runs before the adapter is called.
func (s *QueryService) plan(loc domain.Locator, caps domain.Capabilities) (queryPlan, error) {
	var plan queryPlan
	var err error

	if plan.filters, err = ParseFilters(loc, caps); err != nil {
		return plan, err
	}
	if plan.control, err = ParseResultControl(loc); err != nil {
		return plan, err
	}
	budget, err := ParseBudget(loc)
	if err != nil {
		return plan, err
	}
	plan.budget = budget.WithDefaults(s.defaultBudget)
	plan.fields = ParseFields(loc)

	for _, f := range plan.filters {
		logger.Debug("Filter: %s", f)
	}
	return plan, nil
}

// resolve calls the adapter under the query timeout. Element discovery
// failures are logged and ignored.
func (s *QueryService) resolve(
	ctx context.Context,
	adapter driven.Adapter,
	loc domain.Locator,
	caps domain.Capabilities,
) (domain.AdapterResult, []domain.ElementInfo, error) {
	callCtx := ctx
	if s.timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}

	start := time.Now()
	var result domain.AdapterResult

	if loc.HasElement() && caps.Element {
		logger.Debug("Resolving element %q", loc.Element)
		found, err := adapter.ResolveElement(callCtx, loc, loc.Element)
		if err != nil {
			return result, nil, s.wrapAdapterError(callCtx, loc, err)
		}
		if found == nil {
			return result, nil, fmt.Errorf("%w: %q in %s", domain.ErrElementNotFound, loc.Element, loc.Raw)
		}
		result = *found
	} else {
		logger.Debug("Resolving structure")
		var err error
		if result, err = adapter.ResolveStructure(callCtx, loc); err != nil {
			return result, nil, s.wrapAdapterError(callCtx, loc, err)
		}
	}
	logger.Debug("Adapter returned %s with %d item(s) in %v", result.Kind, result.Len(), time.Since(start))

	var elements []domain.ElementInfo
	if !loc.HasElement() && caps.AvailableElements {
		list, err := adapter.ListAvailableElements(callCtx, loc)
		if err != nil {
			logger.Warn("Element discovery failed: %v", err)
		} else {
			elements = list
		}
	}

	return result, elements, nil
}

func (s *QueryService) wrapAdapterError(ctx context.Context, loc domain.Locator, err error) error {
	if errors.Is(err, domain.ErrElementNotFound) {
		return err
	}
	execErr := domain.NewAdapterExecutionError(loc.Scheme, loc.Raw, err)
	if errors.Is(ctx.Err(), context.DeadlineExceeded) {
		execErr.Timeout = true
	}
	return execErr
}

// execute runs filter, order and paginate, project and budget, in that order.
func (s *QueryService) execute(
	loc domain.Locator,
	adapter driven.Adapter,
	result domain.AdapterResult,
	plan queryPlan,
) (*domain.Envelope, error) {
	if !result.IsSequence() && len(plan.filters) > 0 {
		return nil, fmt.Errorf("%w: %s returned a single object", domain.ErrFilterNotApplicable, loc.Raw)
	}

	if result.IsSequence() {
		before := len(result.Items)
		items, err := FilterItems(result.Items, plan.filters, adapter, NewComparator())
		if err != nil {
			return nil, err
		}
		logger.Stage("filter", before, len(items))

		before = len(items)
		items = ApplyResultControl(items, plan.control)
		logger.Stage("control", before, len(items))

		result = domain.SequenceResult(items)
	}

	result = Project(result, plan.fields)

	before := result.Len()
	result, meta, err := EnforceBudget(result, plan.budget, plan.control.Offset)
	if err != nil {
		return nil, err
	}
	logger.Stage("budget", before, result.Len())

	return &domain.Envelope{
		Locator: loc.Raw,
		Result:  result,
		Meta:    meta,
	}, nil
}
