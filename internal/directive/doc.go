// Package directive implements the mini-parser for the parenthesized style
// directive that may follow a math span, e.g. the "(style: bold)" in
// "$x$(style: bold)".
//
// The parser is run over the whole remainder of the text following a closed math
// delimiter. It does not know where the directive ends; instead it reports how
// its balanced-bracket scan stopped:
//
//   - Ok: the remainder is balanced up to its end (the directive runs to the end
//     of the available text).
//   - UnexpectedToken: a mismatched closer, or an unclosed bracket/string at the
//     end of the text. Callers treat this as "no directive".
//   - UnmatchedClose: the first ")" without an opener. Its offset marks the end
//     of the directive body.
//
// ParseEntries turns a directive body into a flat list of key/value entries.
package directive
