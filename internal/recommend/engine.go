// Redit Feed - Personalized Social Feed Recommendation Service
// Copyright 2026 chari00001
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/chari00001/redit-feed

package recommend

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"

	"github.com/chari00001/redit-feed/internal/models"
)

// Engine is the recommendation engine. All scoring reads go against an
// immutable snapshot behind an atomic pointer; training builds a new
// snapshot aside and swaps it in, so reads never block on a retrain.
//
// An Engine starts unfitted. Scoring operations return ErrNotFitted until
// the first successful Fit, Retrain or LoadModel.
type Engine struct {
	cfg *Config
	log zerolog.Logger

	snap     atomic.Pointer[snapshot]
	profiles *profileStore

	provider DataProvider
	store    ModelStore

	// rng feeds score jitter and the fallback shuffle. Guarded by a
	// locked source so concurrent requests can share it.
	rng *rand.Rand

	training atomic.Bool
	version  atomic.Int64
}

// NewEngine creates an unfitted engine. A nil config gets the defaults.
func NewEngine(cfg *Config, log zerolog.Logger) (*Engine, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid recommend config: %w", err)
	}

	seed := cfg.Seed
	if seed == 0 {
		seed = 42
	}

	return &Engine{
		cfg:      cfg.Clone(),
		log:      log.With().Str("component", "recommend").Logger(),
		profiles: newProfileStore(),
		rng:      rand.New(&lockedSource{src: rand.NewSource(seed)}),
	}, nil
}

// SetDataProvider wires the backing store for posts and interactions.
func (e *Engine) SetDataProvider(p DataProvider) { e.provider = p }

// SetModelStore wires model persistence.
func (e *Engine) SetModelStore(s ModelStore) { e.store = s }

// SetRandSource replaces the jitter random source. Tests pin this for
// reproducible scores.
func (e *Engine) SetRandSource(src rand.Source) {
	e.rng = rand.New(&lockedSource{src: src})
}

// Fitted reports whether a model snapshot is available.
func (e *Engine) Fitted() bool {
	return e.snap.Load() != nil
}

// Fit trains the model on the given posts: content analysis (when the
// corpus is large enough), topic clustering, enhanced tags, the tag
// feature matrix, and a full profile rebuild. The new snapshot is
// published atomically at the end; concurrent reads keep using the old
// one until then.
//
// Only one fit runs at a time; a second concurrent call fails with
// ErrTrainingInProgress.
func (e *Engine) Fit(ctx context.Context, posts []models.Post) error {
	if !e.training.CompareAndSwap(false, true) {
		return ErrTrainingInProgress
	}
	defer e.training.Store(false)

	start := time.Now()
	snap, err := e.buildSnapshot(posts)
	if err != nil {
		return err
	}

	if e.provider != nil {
		if err := e.profiles.loadFromProvider(ctx, e.provider, snap); err != nil {
			return fmt.Errorf("load interaction log: %w", err)
		}
	} else {
		e.profiles.rebuildAll(snap)
	}

	e.snap.Store(snap)

	topics := 0
	if snap.analyzer != nil {
		topics = len(snap.analyzer.Topics())
	}
	e.log.Info().
		Int("posts", len(posts)).
		Int("features", snap.tagVec.Dim()).
		Int("topics", topics).
		Int("model_version", snap.version).
		Dur("took", time.Since(start)).
		Msg("model trained")
	return nil
}

// buildSnapshot assembles a new immutable snapshot without touching the
// published one.
func (e *Engine) buildSnapshot(posts []models.Post) (*snapshot, error) {
	snap := &snapshot{
		version:      int(e.version.Add(1)),
		fittedAt:     time.Now().UTC(),
		posts:        posts,
		index:        make(map[int64]int, len(posts)),
		enhancedTags: make(map[int64][]string, len(posts)),
	}
	for i, p := range posts {
		snap.index[p.ID] = i
	}

	if len(posts) > e.cfg.Analyzer.MinPostsForAnalysis {
		analyzer := NewContentAnalyzer(e.cfg.Analyzer)
		analyzer.ExtractKeywords(posts)

		// Clustering is seeded independently of the jitter stream so the
		// topic layout is reproducible run to run.
		clusterRng := rand.New(rand.NewSource(e.cfg.Seed))
		if _, err := analyzer.Cluster(e.cfg.Clustering.Clusters, e.cfg.Clustering.Restarts,
			e.cfg.Clustering.MaxIterations, clusterRng); err != nil {
			return nil, err
		}
		snap.analyzer = analyzer

		for i := range posts {
			snap.enhancedTags[posts[i].ID] = buildEnhancedTags(&posts[i], analyzer, e.cfg.Analyzer.TopicKeywordsInTags)
		}
	}

	tagLists := make([][]string, len(posts))
	for i, p := range posts {
		tagLists[i] = snap.tags(p.ID)
	}
	snap.tagVec = NewTagVectorizer()
	snap.tagMatrix = snap.tagVec.FitTransformTags(tagLists)

	return snap, nil
}

// Retrain fetches the full corpus from the data provider and refits.
func (e *Engine) Retrain(ctx context.Context) error {
	if e.provider == nil {
		return ErrNoDataProvider
	}
	posts, err := e.provider.FetchPosts(ctx)
	if err != nil {
		return fmt.Errorf("fetch posts: %w", err)
	}
	return e.Fit(ctx, posts)
}

// AnalyzeNewPosts folds posts created since the given time into the
// model. When any fetched post is missing from the current snapshot, a
// full retrain runs; otherwise this is a no-op. Returns the number of new
// posts found.
func (e *Engine) AnalyzeNewPosts(ctx context.Context, since time.Time) (int, error) {
	if e.provider == nil {
		return 0, ErrNoDataProvider
	}
	recent, err := e.provider.FetchPostsSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("fetch recent posts: %w", err)
	}

	snap := e.snap.Load()
	fresh := 0
	for i := range recent {
		if snap == nil {
			fresh++
			continue
		}
		if _, known := snap.index[recent[i].ID]; !known {
			fresh++
		}
	}
	if fresh == 0 {
		return 0, nil
	}

	e.log.Info().Int("new_posts", fresh).Msg("new posts found, retraining")
	if err := e.Retrain(ctx); err != nil {
		return fresh, err
	}
	return fresh, nil
}

// RecordInteraction appends an interaction to the log and rebuilds the
// user's profile against the current snapshot. Interactions recorded
// before the first fit still count; their tag affinities materialize on
// the next fit.
func (e *Engine) RecordInteraction(ctx context.Context, in models.Interaction) error {
	if !in.Type.Valid() {
		return fmt.Errorf("invalid interaction type %q", in.Type)
	}
	if in.Timestamp.IsZero() {
		in.Timestamp = time.Now().UTC()
	}

	if e.provider != nil {
		if err := e.provider.AppendInteraction(ctx, in); err != nil {
			return fmt.Errorf("append interaction: %w", err)
		}
	}

	e.profiles.record(in, e.snap.Load())
	return nil
}

// Recommend returns the personalized feed for a user. A user missing
// from the in-memory profiles is looked up in the interaction log first;
// users without any history get the diversified popularity ranking.
// topN of zero means the configured default; values above the configured
// maximum are clamped.
func (e *Engine) Recommend(ctx context.Context, userID int64, topN int, excludeSeen bool) ([]Recommendation, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrNotFitted
	}
	topN = e.clampTopN(topN)

	profile := e.profiles.profile(userID)
	if profile == nil && e.provider != nil {
		loaded, err := e.profiles.loadUser(ctx, e.provider, userID, snap)
		if err != nil {
			return nil, fmt.Errorf("load user history: %w", err)
		}
		profile = loaded
	}
	if profile == nil {
		return e.popularFallback(snap, topN), nil
	}

	var seen map[int64]struct{}
	if excludeSeen {
		seen = e.profiles.seenPosts(userID)
	}

	sc := &scorer{cfg: e.cfg.Scoring, snap: snap, rng: e.rng}
	candidates := make([]scoredPost, 0, len(snap.posts))
	for i := range snap.posts {
		post := &snap.posts[i]
		if _, skip := seen[post.ID]; skip {
			continue
		}
		candidates = append(candidates, scoredPost{
			id:    post.ID,
			score: sc.score(post, profile),
			topic: snap.topic(post.ID),
		})
	}

	sortByScore(candidates)
	picked := diversify(candidates, topN, 3)
	if len(picked) == 0 {
		return e.popularFallback(snap, topN), nil
	}

	out := make([]Recommendation, len(picked))
	for i, c := range picked {
		post, _ := snap.post(c.id)
		reason := sc.reason(&post, profile, c.score)
		if c.backfill {
			reason = "general recommendation"
		}
		out[i] = Recommendation{Post: post, Score: c.score, Reason: reason}
	}
	return out, nil
}

// popularFallback ranks by raw engagement with a multiplicative shuffle
// factor and a stricter per-topic cap, so new users see popular but
// varied content.
func (e *Engine) popularFallback(snap *snapshot, topN int) []Recommendation {
	candidates := make([]scoredPost, 0, len(snap.posts))
	for i := range snap.posts {
		post := &snap.posts[i]
		shuffle := 0.8 + e.rng.Float64()*0.4
		candidates = append(candidates, scoredPost{
			id:    post.ID,
			score: post.PopularityScore() * shuffle,
			topic: snap.topic(post.ID),
		})
	}

	sortByScore(candidates)
	picked := diversify(candidates, topN, 4)

	out := make([]Recommendation, len(picked))
	for i, c := range picked {
		post, _ := snap.post(c.id)
		out[i] = Recommendation{Post: post, Score: c.score, Reason: "popular content"}
	}
	return out
}

// SimilarPosts returns posts similar to the given one: topic mates ranked
// by content similarity when the model has topics, tag-vector cosine
// similarity otherwise. An unknown post id yields an empty result.
func (e *Engine) SimilarPosts(postID int64, topN int) ([]SimilarPost, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrNotFitted
	}
	if topN <= 0 {
		topN = 5
	}

	if snap.analyzer != nil && snap.analyzer.Topic(postID) >= 0 {
		scored := snap.analyzer.SimilarPostIDs(postID, topN)
		out := make([]SimilarPost, 0, len(scored))
		for _, s := range scored {
			if post, ok := snap.post(s.ID); ok {
				out = append(out, SimilarPost{Post: post, Similarity: s.Score})
			}
		}
		return out, nil
	}

	idx, ok := snap.index[postID]
	if !ok {
		return []SimilarPost{}, nil
	}
	ref := snap.tagMatrix[idx]
	scored := make([]ScoredID, 0, len(snap.posts))
	for i := range snap.posts {
		if id := snap.posts[i].ID; id != postID {
			scored = append(scored, ScoredID{ID: id, Score: CosineSimilarity(ref, snap.tagMatrix[i])})
		}
	}
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].ID < scored[j].ID
	})
	if len(scored) > topN {
		scored = scored[:topN]
	}

	out := make([]SimilarPost, len(scored))
	for i, s := range scored {
		post, _ := snap.post(s.ID)
		out[i] = SimilarPost{Post: post, Similarity: s.Score}
	}
	return out, nil
}

// UserProfileSummary returns the external view of a user's interest
// profile. Users without history get a new_user summary, not an error.
func (e *Engine) UserProfileSummary(userID int64) ProfileSummary {
	profile := e.profiles.profile(userID)
	if profile == nil || profile.TotalInteractions == 0 {
		return ProfileSummary{UserID: userID, Status: ProfileStatusNewUser}
	}

	// Profile strength saturates at 100 accumulated interaction weight.
	var totalWeight float64
	for t, n := range profile.InteractionCounts {
		totalWeight += float64(n) * t.Weight()
	}

	return ProfileSummary{
		UserID:            userID,
		Status:            ProfileStatusFound,
		TotalInteractions: profile.TotalInteractions,
		ProfileStrength:   math.Min(1.0, totalWeight/100.0),
		InteractionCounts: profile.InteractionCounts,
		TopInterests:      topInterests(profile, 15),
	}
}

// TopicsSummary summarizes the topic clusters, largest first.
func (e *Engine) TopicsSummary() (TopicsSummary, error) {
	snap := e.snap.Load()
	if snap == nil {
		return TopicsSummary{}, ErrNotFitted
	}
	if snap.analyzer == nil {
		return TopicsSummary{Topics: []TopicInfo{}}, nil
	}

	a := snap.analyzer
	topics := make([]TopicInfo, 0)
	for _, id := range a.Topics() {
		keywords := a.TopicKeywords(id)
		if len(keywords) > 8 {
			keywords = keywords[:8]
		}
		topics = append(topics, TopicInfo{
			TopicID:   id,
			Keywords:  keywords,
			PostCount: a.TopicSize(id),
		})
	}
	sort.SliceStable(topics, func(i, j int) bool {
		return topics[i].PostCount > topics[j].PostCount
	})

	return TopicsSummary{
		Topics:             topics,
		TotalTopics:        len(topics),
		TotalPostsAnalyzed: a.PostCount(),
	}, nil
}

// TopicPosts returns up to topN posts belonging to a topic.
func (e *Engine) TopicPosts(topicID, topN int) ([]models.Post, error) {
	snap := e.snap.Load()
	if snap == nil {
		return nil, ErrNotFitted
	}
	if topN <= 0 {
		topN = 10
	}
	if snap.analyzer == nil {
		return []models.Post{}, nil
	}

	out := make([]models.Post, 0, topN)
	for _, id := range snap.analyzer.TopicPostIDs(topicID, topN) {
		if post, ok := snap.post(id); ok {
			out = append(out, post)
		}
	}
	return out, nil
}

// PostAnalysis returns the derived analysis for one post.
func (e *Engine) PostAnalysis(postID int64) (PostAnalysis, error) {
	snap := e.snap.Load()
	if snap == nil {
		return PostAnalysis{}, ErrNotFitted
	}
	post, ok := snap.post(postID)
	if !ok {
		return PostAnalysis{}, fmt.Errorf("post %d: %w", postID, ErrUnknownPost)
	}

	out := PostAnalysis{
		PostID:       postID,
		OriginalTags: post.Tags,
		EnhancedTags: snap.tags(postID),
		TopicID:      -1,
	}
	if snap.analyzer != nil {
		out.ContentKeywords = snap.analyzer.Keywords(postID)
		out.TopicID = snap.analyzer.Topic(postID)
		out.TopicKeywords = snap.analyzer.TopicKeywords(out.TopicID)
	}
	return out, nil
}

// SaveModel persists the current snapshot through the model store.
func (e *Engine) SaveModel(ctx context.Context) error {
	if e.store == nil {
		return ErrNoModelStore
	}
	snap := e.snap.Load()
	if snap == nil {
		return ErrNotFitted
	}
	return e.store.Save(ctx, snap.state())
}

// LoadModel restores the last persisted snapshot and rebuilds profiles
// against it from the interaction log when a provider is wired.
func (e *Engine) LoadModel(ctx context.Context) error {
	if e.store == nil {
		return ErrNoModelStore
	}
	state, err := e.store.Load(ctx)
	if err != nil {
		return err
	}

	snap := snapshotFromState(state)
	if v := int64(snap.version); v > e.version.Load() {
		e.version.Store(v)
	}

	if e.provider != nil {
		if err := e.profiles.loadFromProvider(ctx, e.provider, snap); err != nil {
			return fmt.Errorf("load interaction log: %w", err)
		}
	} else {
		e.profiles.rebuildAll(snap)
	}

	e.snap.Store(snap)
	e.log.Info().Int("model_version", snap.version).Int("posts", len(snap.posts)).Msg("model restored")
	return nil
}

// Status reports the engine's fitted state.
func (e *Engine) Status() Status {
	snap := e.snap.Load()
	st := Status{UserCount: e.profiles.count()}
	if snap == nil {
		return st
	}
	st.Fitted = true
	st.ModelVersion = snap.version
	st.FittedAt = snap.fittedAt
	st.PostCount = len(snap.posts)
	st.FeatureCount = snap.tagVec.Dim()
	if snap.analyzer != nil {
		st.TopicCount = len(snap.analyzer.Topics())
	}
	return st
}

func (e *Engine) clampTopN(topN int) int {
	if topN <= 0 {
		return e.cfg.Limits.DefaultTopN
	}
	if topN > e.cfg.Limits.MaxTopN {
		return e.cfg.Limits.MaxTopN
	}
	return topN
}

// sortByScore orders candidates by descending score, breaking exact ties
// by id so equal-scored runs are deterministic.
func sortByScore(candidates []scoredPost) {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].id < candidates[j].id
	})
}

// lockedSource serializes access to a rand.Source the way the stdlib's
// global source does, so one *rand.Rand can be shared across requests.
type lockedSource struct {
	mu  sync.Mutex
	src rand.Source
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}
