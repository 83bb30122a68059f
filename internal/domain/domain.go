package domain

import "github.com/angelo-odois/postangelo-sub000/internal/domain/site"

const (
	EntryExperience = site.EntryExperience
	EntryEducation  = site.EntryEducation
	EntryProject    = site.EntryProject
	EntrySkill      = site.EntrySkill
)

type Page = site.Page
type PageTemplate = site.PageTemplate
type Entry = site.Entry

var ValidEntryKind = site.ValidEntryKind
