// Package mathscan recognizes math spans in Markdown source.
//
// Inline spans are delimited by single dollars on one line ("$x^2$"), block
// spans by double dollars ("$$ ... $$") and may cover several lines. Either may
// be followed directly by a parenthesized directive, "$x$(style: bold)", whose
// body is reported as a separate token and attached to the math token.
//
// The scanners work on a State, a host-neutral view of the source with a
// cursor and a line table. Host parsers (see package mathext for goldmark)
// build a State over the text they are tokenizing and translate the tokens
// back into their own tree.
//
// Failed matches are never errors: the delimiter characters are recorded as
// literal text and the cursor always moves forward.
package mathscan
