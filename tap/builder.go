package tap

import "context"

// fragments holds the clause text collected by a builder. Builders copy it
// on every step, so a builder value is never changed once handed out.
type fragments struct {
	client      *Client
	selectQuery string
	fromQuery   string
	whereQuery  string
}

func (f fragments) build() string {
	return f.selectQuery + " " + f.fromQuery + " " + f.whereQuery
}

// Builder is an empty query builder. Its type tracks which clauses have
// been given: Build and Send only exist on ReadyBuilder, which is reached
// once both Select and From were called.
//
// Fragments are used verbatim and must carry their own keywords, e.g.
// Select("SELECT TOP 10 *") and From(`FROM "I/261/fonac"`).
type Builder[T any] struct {
	f fragments
}

// NewBuilder starts a query whose rows decode into T. A nil client sends
// to DefaultEndpoint.
func NewBuilder[T any](c *Client) Builder[T] {
	return Builder[T]{f: fragments{client: c}}
}

// Select sets the SELECT fragment.
func (b Builder[T]) Select(fragment string) SelectBuilder[T] {
	b.f.selectQuery = fragment
	return SelectBuilder[T](b)
}

// From sets the FROM fragment.
func (b Builder[T]) From(fragment string) FromBuilder[T] {
	b.f.fromQuery = fragment
	return FromBuilder[T](b)
}

// Where sets the optional WHERE fragment.
func (b Builder[T]) Where(fragment string) Builder[T] {
	b.f.whereQuery = fragment
	return b
}

// SelectBuilder has a SELECT fragment and still needs FROM.
type SelectBuilder[T any] struct {
	f fragments
}

// Select replaces the SELECT fragment.
func (b SelectBuilder[T]) Select(fragment string) SelectBuilder[T] {
	b.f.selectQuery = fragment
	return b
}

// From sets the FROM fragment, completing the query.
func (b SelectBuilder[T]) From(fragment string) ReadyBuilder[T] {
	b.f.fromQuery = fragment
	return ReadyBuilder[T](b)
}

// Where sets the optional WHERE fragment.
func (b SelectBuilder[T]) Where(fragment string) SelectBuilder[T] {
	b.f.whereQuery = fragment
	return b
}

// FromBuilder has a FROM fragment and still needs SELECT.
type FromBuilder[T any] struct {
	f fragments
}

// Select sets the SELECT fragment, completing the query.
func (b FromBuilder[T]) Select(fragment string) ReadyBuilder[T] {
	b.f.selectQuery = fragment
	return ReadyBuilder[T](b)
}

// From replaces the FROM fragment.
func (b FromBuilder[T]) From(fragment string) FromBuilder[T] {
	b.f.fromQuery = fragment
	return b
}

// Where sets the optional WHERE fragment.
func (b FromBuilder[T]) Where(fragment string) FromBuilder[T] {
	b.f.whereQuery = fragment
	return b
}

// ReadyBuilder has both SELECT and FROM and can be built or sent.
type ReadyBuilder[T any] struct {
	f fragments
}

// Select replaces the SELECT fragment.
func (b ReadyBuilder[T]) Select(fragment string) ReadyBuilder[T] {
	b.f.selectQuery = fragment
	return b
}

// From replaces the FROM fragment.
func (b ReadyBuilder[T]) From(fragment string) ReadyBuilder[T] {
	b.f.fromQuery = fragment
	return b
}

// Where sets the optional WHERE fragment.
func (b ReadyBuilder[T]) Where(fragment string) ReadyBuilder[T] {
	b.f.whereQuery = fragment
	return b
}

// Build joins the SELECT, FROM and WHERE fragments with single spaces.
// Without a WHERE fragment the query ends in a space.
func (b ReadyBuilder[T]) Build() string {
	return b.f.build()
}

// Send builds the query and runs it.
func (b ReadyBuilder[T]) Send(ctx context.Context) (*QueryResult[T], error) {
	return Query[T](ctx, b.f.client, b.Build())
}
