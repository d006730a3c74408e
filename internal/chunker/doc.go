// Package chunker splits documents into bounded, overlapping text units for
// embedding and retrieval.
//
// Three interchangeable strategies implement the same contract:
//
//   - recursive: splits at the coarsest boundary (paragraph, line, sentence,
//     clause, word) that keeps each unit within the token budget, recursing
//     to finer boundaries as needed. This is the default.
//   - fixed: splits purely on character count with a sentence-punctuation
//     lookback window.
//   - markdown: segments at heading boundaries first, then applies the
//     recursive splitter within each section.
//
// # Usage
//
//	c, err := chunker.New(chunker.StrategyRecursive, chunker.Options{
//	    TargetTokens:  400,
//	    OverlapTokens: 40,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	units, err := c.Chunk(docText, "notes/design.md")
//
// # Guarantees
//
// Every emitted unit's estimated token count fits the target, except when a
// single unbreakable token forces a proportional character cut. Character
// overlap between consecutive units never exceeds 50% of the earlier unit,
// and every iteration advances at least one character, so chunking always
// terminates. Chunking the same text with the same options is
// byte-deterministic.
//
// Token counts come from the internal/tokens heuristic and are approximate;
// budgets built on them should leave margin.
package chunker
