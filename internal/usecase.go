package internal

import (
	"context"
	"time"
)

// Use case input/output DTOs

type ContextOutput struct {
	Query     string
	Response  string
	Entities  []string
	CreatedAt time.Time
}

type AddContextInput struct {
	Query    string
	Response string
	Entities []string
	Scope    string
}

type FindSimilarInput struct {
	Query string
	Limit int
	Scope string
}

type FindSimilarOutput struct {
	Results []SimilarOutput
}

type SimilarOutput struct {
	ContextOutput
	Distance float64
}

type EntitiesInput struct {
	Query string
	Scope string
}

type EntitiesOutput struct {
	Entities []string
}

type ListContextsInput struct {
	Scope string
}

type ListContextsOutput struct {
	Contexts []ContextOutput
}

type RemoveContextInput struct {
	Query string
	Scope string
}

type ReloadInput struct {
	Scope string
}

type ReloadOutput struct {
	Entries int
}

type CommitOutput struct {
	Hash      string
	Message   string
	Timestamp time.Time
}

type LogInput struct {
	Limit int
	Scope string
}

type LogOutput struct {
	Commits []CommitOutput
}

type DiffInput struct {
	From  string
	To    string
	Scope string
}

type DiffOutput struct {
	Diff string
}

type RevertInput struct {
	Ref   string
	Scope string
}

// Use cases

type AddContextUseCase struct {
	svc *CacheService
}

func NewAddContextUseCase(svc *CacheService) *AddContextUseCase {
	return &AddContextUseCase{svc: svc}
}

// Execute stores the exchange. When only the save failed, the stored entry is
// returned together with the error.
func (uc *AddContextUseCase) Execute(ctx context.Context, input AddContextInput) (*ContextOutput, error) {
	entry, err := uc.svc.Add(ctx, input.Query, input.Response, input.Entities, input.Scope)
	if entry == nil {
		return nil, err
	}
	out := toContextOutput(entry)
	return &out, err
}

type FindSimilarUseCase struct {
	svc *CacheService
}

func NewFindSimilarUseCase(svc *CacheService) *FindSimilarUseCase {
	return &FindSimilarUseCase{svc: svc}
}

func (uc *FindSimilarUseCase) Execute(ctx context.Context, input FindSimilarInput) (*FindSimilarOutput, error) {
	matches, err := uc.svc.Similar(ctx, input.Query, input.Limit, input.Scope)
	if err != nil {
		return nil, err
	}

	output := &FindSimilarOutput{
		Results: make([]SimilarOutput, len(matches)),
	}
	for i, m := range matches {
		output.Results[i] = SimilarOutput{
			ContextOutput: toContextOutput(m.Entry),
			Distance:      m.Distance,
		}
	}
	return output, nil
}

type EntitiesUseCase struct {
	svc *CacheService
}

func NewEntitiesUseCase(svc *CacheService) *EntitiesUseCase {
	return &EntitiesUseCase{svc: svc}
}

func (uc *EntitiesUseCase) Execute(ctx context.Context, input EntitiesInput) (*EntitiesOutput, error) {
	entities, err := uc.svc.Entities(ctx, input.Query, input.Scope)
	if err != nil {
		return nil, err
	}
	if entities == nil {
		entities = []string{}
	}
	return &EntitiesOutput{Entities: entities}, nil
}

type ListContextsUseCase struct {
	svc *CacheService
}

func NewListContextsUseCase(svc *CacheService) *ListContextsUseCase {
	return &ListContextsUseCase{svc: svc}
}

func (uc *ListContextsUseCase) Execute(ctx context.Context, input ListContextsInput) (*ListContextsOutput, error) {
	entries, err := uc.svc.List(ctx, input.Scope)
	if err != nil {
		return nil, err
	}

	output := &ListContextsOutput{
		Contexts: make([]ContextOutput, len(entries)),
	}
	for i, e := range entries {
		output.Contexts[i] = toContextOutput(e)
	}
	return output, nil
}

type RemoveContextUseCase struct {
	svc *CacheService
}

func NewRemoveContextUseCase(svc *CacheService) *RemoveContextUseCase {
	return &RemoveContextUseCase{svc: svc}
}

func (uc *RemoveContextUseCase) Execute(ctx context.Context, input RemoveContextInput) error {
	return uc.svc.Remove(ctx, input.Query, input.Scope)
}

type ReloadUseCase struct {
	svc *CacheService
}

func NewReloadUseCase(svc *CacheService) *ReloadUseCase {
	return &ReloadUseCase{svc: svc}
}

func (uc *ReloadUseCase) Execute(ctx context.Context, input ReloadInput) (*ReloadOutput, error) {
	n, err := uc.svc.Reload(ctx, input.Scope)
	if err != nil {
		return nil, err
	}
	return &ReloadOutput{Entries: n}, nil
}

type LogUseCase struct {
	svc *HistoryService
}

func NewLogUseCase(svc *HistoryService) *LogUseCase {
	return &LogUseCase{svc: svc}
}

func (uc *LogUseCase) Execute(ctx context.Context, input LogInput) (*LogOutput, error) {
	commits, err := uc.svc.Log(ctx, input.Limit, input.Scope)
	if err != nil {
		return nil, err
	}

	output := &LogOutput{
		Commits: make([]CommitOutput, len(commits)),
	}
	for i, c := range commits {
		output.Commits[i] = toCommitOutput(c)
	}
	return output, nil
}

type DiffUseCase struct {
	svc *HistoryService
}

func NewDiffUseCase(svc *HistoryService) *DiffUseCase {
	return &DiffUseCase{svc: svc}
}

func (uc *DiffUseCase) Execute(ctx context.Context, input DiffInput) (*DiffOutput, error) {
	diff, err := uc.svc.Diff(ctx, input.From, input.To, input.Scope)
	if err != nil {
		return nil, err
	}
	return &DiffOutput{Diff: diff}, nil
}

type RevertUseCase struct {
	svc *HistoryService
}

func NewRevertUseCase(svc *HistoryService) *RevertUseCase {
	return &RevertUseCase{svc: svc}
}

func (uc *RevertUseCase) Execute(ctx context.Context, input RevertInput) (*CommitOutput, error) {
	commit, err := uc.svc.Revert(ctx, input.Ref, input.Scope)
	if err != nil {
		return nil, err
	}
	out := toCommitOutput(commit)
	return &out, nil
}

func toContextOutput(e *Entry) ContextOutput {
	return ContextOutput{
		Query:     e.Query,
		Response:  e.Response,
		Entities:  e.Entities,
		CreatedAt: e.CreatedAt,
	}
}

func toCommitOutput(c *Commit) CommitOutput {
	return CommitOutput{
		Hash:      c.Hash,
		Message:   c.Message,
		Timestamp: c.Timestamp,
	}
}
