// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package archive

import (
	"strings"
	"unicode"
)

// The generation backend is not consistent about titles across requests for
// the same well-known topic: sometimes the Chinese title comes back in
// Latin script, sometimes a title is missing outright. This table-driven
// repair backfills titles from a trusted static catalog and never invents
// data: unknown topics pass through unchanged.

type topicLabels struct {
	en       string
	zh       string
	category string
}

// topicCatalog maps normalized request slugs to canonical labels.
var topicCatalog = map[string]topicLabels{
	"gdp":                    {"GDP", "国内生产总值", "economy"},
	"gdp_per_capita":         {"GDP per Capita", "人均GDP", "economy"},
	"military_spending":      {"Military Spending", "军费开支", "military"},
	"defense_budget":         {"Military Spending", "军费开支", "military"},
	"population":             {"Population", "人口", "society"},
	"life_expectancy":        {"Life Expectancy", "预期寿命", "society"},
	"urbanization_rate":      {"Urbanization Rate", "城镇化率", "society"},
	"co2_emissions":          {"CO2 Emissions", "二氧化碳排放量", "environment"},
	"electricity_generation": {"Electricity Generation", "发电量", "energy"},
	"steel_production":       {"Steel Production", "钢铁产量", "industry"},
	"internet_users":         {"Internet Users", "互联网用户", "technology"},
	"r_d_spending":           {"R&D Spending", "研发支出", "technology"},
	"patent_applications":    {"Patent Applications", "专利申请量", "technology"},
	"exports":                {"Exports", "出口总额", "economy"},
}

// keywordOverrides catches known problem topics whose slugs vary with
// request phrasing. Checked in order; first match wins.
var keywordOverrides = []struct {
	keywords []string
	slug     string
}{
	{[]string{"gdp", "capita"}, "gdp_per_capita"},
	{[]string{"人均", "gdp"}, "gdp_per_capita"},
	{[]string{"military"}, "military_spending"},
	{[]string{"军费"}, "military_spending"},
	{[]string{"defense", "budget"}, "military_spending"},
	{[]string{"life", "expectancy"}, "life_expectancy"},
	{[]string{"预期寿命"}, "life_expectancy"},
	{[]string{"co2"}, "co2_emissions"},
	{[]string{"carbon"}, "co2_emissions"},
	{[]string{"patent"}, "patent_applications"},
}

// RepairTitles backfills missing or wrong-script display titles for a known
// topic. Matching order: exact catalog match on the key's slug, then
// keyword overrides. The English title is filled only when absent; the
// Chinese title is also replaced when it is detectably in the wrong script
// (pure ASCII where Han was expected). Unknown topics pass through.
func RepairTitles(keyOrSlug, titleEn, titleZh string) (string, string) {
	labels, ok := lookupTopic(keyOrSlug)
	if !ok {
		return titleEn, titleZh
	}
	if strings.TrimSpace(titleEn) == "" {
		titleEn = labels.en
	}
	if strings.TrimSpace(titleZh) == "" || !containsHan(titleZh) {
		titleZh = labels.zh
	}
	return titleEn, titleZh
}

// CategoryFor returns the catalog category for a known topic, or "" when
// the topic is unknown.
func CategoryFor(keyOrSlug string) string {
	labels, ok := lookupTopic(keyOrSlug)
	if !ok {
		return ""
	}
	return labels.category
}

// TitlesFromKey reconstructs display titles for the degraded listing path,
// where only the filename is available. Known topics come from the
// catalog; everything else gets the humanized slug as the English title.
func TitlesFromKey(key string) (titleEn, titleZh string) {
	slug := SlugFromKey(key)
	if labels, ok := lookupTopic(slug); ok {
		return labels.en, labels.zh
	}
	human := humanizeSlug(slug)
	if containsHan(human) {
		return "", human
	}
	return human, ""
}

func lookupTopic(keyOrSlug string) (topicLabels, bool) {
	slug := keyOrSlug
	if strings.Contains(keyOrSlug, "/") {
		slug = SlugFromKey(keyOrSlug)
	}
	if labels, ok := topicCatalog[slug]; ok {
		return labels, true
	}
	for _, ov := range keywordOverrides {
		if containsAll(slug, ov.keywords) {
			return topicCatalog[ov.slug], true
		}
	}
	return topicLabels{}, false
}

func containsAll(s string, subs []string) bool {
	for _, sub := range subs {
		if !strings.Contains(s, sub) {
			return false
		}
	}
	return true
}

func containsHan(s string) bool {
	for _, r := range s {
		if unicode.Is(unicode.Han, r) {
			return true
		}
	}
	return false
}

func humanizeSlug(slug string) string {
	words := strings.Split(slug, "_")
	for i, w := range words {
		r := []rune(w)
		if len(r) == 0 {
			continue
		}
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.TrimSpace(strings.Join(words, " "))
}
