// Package normalisers turns upstream markup into plain text suitable for
// embedding. The html package is the only format kbrag ingests.
package normalisers
