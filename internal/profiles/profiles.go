// Package profiles - profiles.go holds the built-in selector table.
package profiles

// commonNoise is stripped from every profile's page before description
// extraction: application forms, EEO boilerplate, share widgets, cookie
// banners.
var commonNoise = []string{
	"form",
	".application-form",
	".apply-button-container",
	".voluntary-disclosure",
	".eeo-statement",
	".self-identification",
	".social-share",
	".share-buttons",
	".cookie-banner",
	".cookie-consent",
	".gdpr-notice",
}

func builtinProfiles() []Profile {
	return []Profile{
		{
			ID:             "linkedin",
			DomainSuffixes: []string{"linkedin.com"},
			Selectors: FieldSelectors{
				Title:    []string{".top-card-layout__title", ".topcard__title", "h1.job-title", "h1"},
				Company:  []string{".topcard__org-name-link", ".top-card-layout__card a[data-tracking-control-name*='topcard']", ".topcard__flavor"},
				Location: []string{".topcard__flavor--bullet", ".top-card-layout__second-subline .topcard__flavor"},
				Description: []string{
					".show-more-less-html__markup",
					".description__text",
					"#job-details",
					".jobs-description-content__text",
				},
			},
			Noise: append([]string{".top-level-modal-container", ".contextual-sign-in-modal"}, commonNoise...),
		},
		{
			ID:             "indeed",
			DomainSuffixes: []string{"indeed.com"},
			Selectors: FieldSelectors{
				Title:    []string{".jobsearch-JobInfoHeader-title", "h1[data-testid='jobsearch-JobInfoHeader-title']", "h1"},
				Company:  []string{"[data-testid='inlineHeader-companyName']", "[data-company-name]", ".jobsearch-CompanyInfoContainer a"},
				Location: []string{"[data-testid='inlineHeader-companyLocation']", ".jobsearch-JobInfoHeader-subtitle div"},
				Salary:   []string{"#salaryInfoAndJobType", "[data-testid='attribute_snippet_testid']"},
				Description: []string{
					"#jobDescriptionText",
					".jobsearch-jobDescriptionText",
					".jobsearch-JobComponent-description",
				},
			},
			Noise: commonNoise,
		},
		{
			ID:             "dice",
			DomainSuffixes: []string{"dice.com"},
			Selectors: FieldSelectors{
				Title:    []string{"[data-cy='jobTitle']", "h1.jobTitle", "h1"},
				Company:  []string{"[data-cy='companyNameLink']", ".employer"},
				Location: []string{"[data-cy='location']", ".location"},
				Salary:   []string{"[data-cy='payDetails']"},
				Description: []string{
					"[data-testid='jobDescriptionHtml']",
					"[data-cy='jobDescription']",
					"#jobdescSec",
				},
			},
			Noise: commonNoise,
		},
		{
			ID:             "greenhouse",
			DomainSuffixes: []string{"greenhouse.io", "boards.greenhouse.io"},
			Selectors: FieldSelectors{
				Title:    []string{".job__title h1", ".app-title", "h1"},
				Company:  []string{".company-name", ".job__company"},
				Location: []string{".job__location", ".location"},
				Description: []string{
					".job__description.body",
					".job__description",
					".job-description__content",
					"#content",
					".job-post-container",
				},
			},
			Noise: append([]string{"#application-form", ".application--wrapper", ".voluntary-self-id"}, commonNoise...),
		},
		{
			ID:             "lever",
			DomainSuffixes: []string{"lever.co", "jobs.lever.co"},
			Selectors: FieldSelectors{
				Title:    []string{".posting-headline h2", ".posting-header h2", "h2"},
				Company:  []string{".main-header-logo img[alt]", ".posting-categories .sort-by-team"},
				Location: []string{".posting-categories .location", ".sort-by-location"},
				Description: []string{
					".posting-page",
					".section-wrapper.page-full-width",
					".posting-description",
					".content",
				},
				Requirements: []string{".posting-requirements"},
			},
			Noise: append([]string{".postings-btn-wrapper", ".lever-application-form", ".posting-apply"}, commonNoise...),
		},
		{
			ID:             "workday",
			DomainSuffixes: []string{"myworkdayjobs.com", "workday.com"},
			DomainPatterns: []string{"myworkday"},
			Selectors: FieldSelectors{
				Title:    []string{"[data-automation-id='jobPostingHeader']", "h1"},
				Company:  []string{"[data-automation-id='company']"},
				Location: []string{"[data-automation-id='locations']", "[data-automation-id='location']"},
				Description: []string{
					"[data-automation-id='jobPostingDescription']",
					"[data-automation-id='jobDescription']",
					".gwt-HTML",
					".job-description",
				},
			},
			Noise: append([]string{"[data-automation-id='applyButton']", "[data-automation-id='similarJobs']"}, commonNoise...),
		},
		{
			ID:             "taleo",
			DomainSuffixes: []string{"taleo.net"},
			DomainPatterns: []string{"taleo"},
			Selectors: FieldSelectors{
				Title:    []string{".titlepage", "#requisitionDescriptionInterface\\.reqTitleLinkAction h1", "h1"},
				Location: []string{".subtitlepage"},
				Description: []string{
					"#requisitionDescriptionInterface\\.ID1669\\.row1",
					".mastercontentpanel3",
					"#content",
					".editablesection",
				},
			},
			Noise: commonNoise,
		},
		{
			ID:             "icims",
			DomainSuffixes: []string{"icims.com"},
			DomainPatterns: []string{"icims"},
			Selectors: FieldSelectors{
				Title:    []string{".iCIMS_Header h1", "h1.iCIMS_InfoMsg_Job", "h1"},
				Location: []string{".iCIMS_JobHeaderTag"},
				Description: []string{
					".iCIMS_JobContent",
					".iCIMS_InfoMsg_Job",
					".iCIMS_Expandable_Container",
				},
			},
			Noise: append([]string{".iCIMS_JobOptions", ".iCIMS_SecondaryButton"}, commonNoise...),
		},
		{
			ID:             "successfactors",
			DomainSuffixes: []string{"successfactors.com", "successfactors.eu"},
			DomainPatterns: []string{"successfactors", "sapsf"},
			Selectors: FieldSelectors{
				Title:    []string{".jobTitle", "h1[itemprop='title']", "h1"},
				Location: []string{".jobGeoLocation", "[itemprop='jobLocation']"},
				Description: []string{
					".jobDisplay",
					"[itemprop='description']",
					".job",
				},
			},
			Noise: commonNoise,
		},
		{
			ID:             "brassring",
			DomainSuffixes: []string{"brassring.com"},
			DomainPatterns: []string{"brassring", "kenexa"},
			Selectors: FieldSelectors{
				Title: []string{"#Job_Title", ".jobTitle", "h1"},
				Description: []string{
					"#Job_Description",
					".jobdescription",
					"#gateway_content",
				},
			},
			Noise: commonNoise,
		},
		{
			ID:             "ultipro",
			DomainSuffixes: []string{"ultipro.com", "ukg.com"},
			DomainPatterns: []string{"ultipro", "rec.pro.ukg"},
			Selectors: FieldSelectors{
				Title:    []string{"[data-automation='job-title']", "h1.opportunity-title", "h1"},
				Location: []string{"[data-automation='city-state-zip-country-label']"},
				Description: []string{
					"[data-automation='job-description']",
					".opportunity-description",
				},
			},
			Noise: commonNoise,
		},
		{
			ID:             "ashby",
			DomainSuffixes: []string{"ashbyhq.com", "jobs.ashbyhq.com"},
			Selectors: FieldSelectors{
				Title:    []string{"h1[class*='_title']", "h1"},
				Location: []string{"[class*='_locations']"},
				Description: []string{
					"[class*='_descriptionText']",
					"#overview",
					"main",
				},
			},
			Noise: commonNoise,
		},
		{
			ID:             "smartrecruiters",
			DomainSuffixes: []string{"smartrecruiters.com"},
			Selectors: FieldSelectors{
				Title:    []string{"h1.job-title", "[itemprop='title']", "h1"},
				Company:  []string{"[itemprop='hiringOrganization']"},
				Location: []string{"[itemprop='jobLocation']", "spl-job-location"},
				Description: []string{
					"[itemprop='description']",
					".job-sections",
					"#st-jobDescription",
				},
			},
			Noise: commonNoise,
		},
	}
}
