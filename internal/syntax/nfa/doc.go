// Package nfa compiles sets of token patterns into a Thompson NFA and runs
// longest-match simulation over a scan.Scanner.
//
// Pattern syntax:
//
//	x         literal character
//	.         any character except '\n'
//	[abc]     character class; [^abc] negated; a-z ranges
//	\d \D     digit / non-digit
//	\w \W     word character (letter, digit, '_') / non-word
//	\s \S     space, '\t', '\r', '\f', '\v' / anything else (\s excludes '\n')
//	\n \t \r \f \v
//	\x        any other escaped character is literal
//	( )       grouping
//	a|b       alternation
//	* + ?     repetition
//
// Inside a class a ']' is literal when it comes first and a '-' is literal
// when it comes first or last.
//
// Matching advances every live state in parallel over a sparse state set; no
// backtracking happens. The longest match wins and, when several patterns
// accept at that length, the pattern registered first wins. This is what
// lets a keyword pattern listed before an identifier pattern claim "if"
// while "iffy" still lexes as one identifier.
//
// A Machine holds simulation state and is not safe for concurrent use.
package nfa
