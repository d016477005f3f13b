package web

import (
	"html/template"

	"github.com/microcosm-cc/bluemonday"
)

// DefaultImageURL is the illustration on the home page.
const DefaultImageURL = "https://raw.githubusercontent.com/Papaxristos/Cardio-disease-prediction/refs/heads/main/heart-attack.webp"

const homeCopy = `
<h3>Cardiovascular Diseases (CVDs)</h3>
<p>Cardiovascular diseases (CVDs) are the leading cause of death globally, taking an estimated 17.9 million lives each year.
CVDs are a group of disorders of the heart and blood vessels and include coronary heart disease, cerebrovascular disease,
rheumatic heart disease and other conditions. More than four out of five CVD deaths are due to heart attacks and strokes,
and one third of these deaths occur prematurely in people under 70 years of age.</p>
<p>The most important behavioural risk factors of heart disease and stroke are unhealthy diet, physical inactivity,
tobacco use and harmful use of alcohol. Amongst environmental risk factors, air pollution is an important factor.
The effects of behavioural risk factors may show up in individuals as raised blood pressure, raised blood glucose,
raised blood lipids, and overweight and obesity. These <em>intermediate risk factors</em> can be measured in primary care
facilities and indicate an increased risk of heart attack, stroke, heart failure and other complications.</p>
<p>Cessation of tobacco use, reduction of salt in the diet, eating more fruit and vegetables, regular physical activity
and avoiding harmful use of alcohol have been shown to reduce the risk of cardiovascular disease. Health policies that
create conducive environments for making healthy choices affordable and available, as well as improving air quality
and reducing pollution, are essential for motivating people to adopt and sustain healthy behaviours.</p>
<p>Identifying those at highest risk of CVDs and ensuring they receive appropriate treatment can prevent premature deaths.
Access to noncommunicable disease medicines and basic health technologies in all primary health care facilities is
essential to ensure that those in need receive treatment and counselling.</p>
`

const dataCopy = `
<p>This data set dates from 1988 and consists of four databases: Cleveland, Hungary, Switzerland, and Long Beach V.
It contains 76 attributes, including the predicted attribute, but all published experiments refer to using a subset
of 14 of them. The <code>target</code> field refers to the presence of heart disease in the patient. It is integer
valued: 0 = no disease and 1 = disease.</p>
`

// Copy is the prose shown on the home and data information pages. Fields
// hold HTML fragments and are sanitised before rendering.
type Copy struct {
	Home     string
	DataInfo string
	ImageURL string
}

// DefaultCopy returns the bundled page copy.
func DefaultCopy() Copy {
	return Copy{Home: homeCopy, DataInfo: dataCopy, ImageURL: DefaultImageURL}
}

// sanitize renders an HTML fragment with the user-generated-content policy.
func sanitize(fragment string) template.HTML {
	return template.HTML(bluemonday.UGCPolicy().Sanitize(fragment)) //nolint:gosec // sanitised
}
