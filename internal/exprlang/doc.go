// Package exprlang implements the transition-expression language (spec
// §4.2): a small propositional formula over event names, optionally
// paired with a per-position counter pattern of Z ("zero"), NZ
// ("non-zero") or "-" ("don't care") items.
package exprlang
