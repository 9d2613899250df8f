// Package expr implements the mini-language evaluator. A string expression
// passes through a fixed rewrite pipeline: $name tokens are substituted from
// the context, if(cond, a, b) calls are rewritten into ternary form by
// balanced-parenthesis scanning, registered named functions are resolved by
// recursively evaluating their arguments and splicing the result back into
// the text, and the fully reduced arithmetic is finally evaluated through a
// character-allowlisted HCL expression against the context's variables and a
// closed table of math functions.
//
// Evaluation never propagates a failure to the caller: any error degrades
// the expression to 0 and a diagnostic record. Results are memoized under
// the pair (expression text, context fingerprint); the cache has no
// fine-grained invalidation and must be cleared whenever context values may
// have changed.
package expr
