// Package classify assigns hardware categories to assets from extracted
// make/model metadata.
//
// Classification is table-driven: an ordered list of category rules, each
// carrying case-insensitive substring patterns matched against the make and
// model fields. The first matching rule wins, absent metadata or an exhausted
// table falls through to "other", and classification never fails. The
// built-in table is embedded; deployments grow it by pointing rules.path at
// their own TOML file.
package classify
