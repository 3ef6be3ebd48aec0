// Package filter builds, evaluates and serializes record filters.
//
// A Filter is an immutable chain of comparators joined by And/Or
// connectives, with nested filters as sub-chains:
//
//	adults := filter.New[map[string]any]().
//	    GreaterThanOrEqualTo("age", 18).
//	    LessThan("age", 65)
//
//	adults.Apply(records)        // records with 18 <= age < 65
//	adults.Serialize()           // gte(/age, 18)&lt(/age, 65)
//
// Every builder call returns a new Filter; the receiver is never modified,
// so filters can be extended from a shared base and used concurrently.
//
// # Precedence
//
// And binds tighter than Or. A chain a, b, Or, c reads (a AND b) OR c.
// Adjacent comparators get an implicit And. Calling And() or Or() with no
// argument appends a connective for the next comparator; with arguments
// both sides are nested as sub-chains, so their own precedence is kept.
//
// # Empty filters
//
// An empty filter matches nothing: Test returns false and Apply returns an
// empty slice. And() and Or() on an empty filter are no-ops.
//
// # Query strings
//
// Serialize produces tag(pointer, json) terms (lt, lte, gt, gte, eq, ne,
// contains, in) joined by & and |, nested filters in parentheses. Matches
// and Custom comparators have no textual form and fail with
// ErrUnserializable; a custom Serializer can handle them instead.
package filter
