package rules

import "github.com/ppiankov/arrestflow/internal/facts"

// Shorthand for the fact fields and tokens used in the built-in graph
const (
	person   = facts.FieldArrestingPerson
	warrant  = facts.FieldWarrant
	category = facts.FieldOffenceCategory

	citizen = string(facts.PersonCitizen)
	police  = string(facts.PersonPolice)
	yes     = "true"
	no      = "false"

	summary         = string(facts.CategorySummary)
	hybrid          = string(facts.CategoryHybrid)
	s553            = string(facts.CategoryS553)
	indictableShort = string(facts.CategoryIndictableShort)
	indictableLong  = string(facts.CategoryIndictableLong)
	s469            = string(facts.CategoryS469)
)

// Identifiers of nodes referenced outside the data table
const (
	NodeWhoArresting              = "whoArresting"
	NodeCitizenArresting          = "citizenArresting"
	NodePoliceArresting           = "policeArresting"
	NodeWarrantApplication        = "warrantApplication"
	NodeReleaseIndictableLess5    = "releaseIndictableLess5"
	NodeReleaseIndictableGreater5 = "releaseIndictableGreater5"
	NodeReleaseJustice            = "releaseJustice"
)

// CriminalCode returns the arrest and release rules of the Criminal Code
// (ss. 494 to 522) as a validated graph. Each call returns a fresh copy.
func CriminalCode() *Graph {
	citizenOnly := []Condition{When(person, Equals(police))}
	policeWithWarrant := []Condition{When(person, Equals(citizen)), When(warrant, Equals(no))}
	policeWithoutWarrant := []Condition{When(person, Equals(citizen)), When(warrant, Equals(yes))}
	indictableOnly := When(category, OneOf(s469, indictableShort, indictableLong))

	nodes := []Node{
		{
			ID:             NodeWhoArresting,
			Label:          "Who is making the arrest?",
			IrrelevantWhen: []Condition{When(person, Known())},
		},
		{
			ID:             NodeCitizenArresting,
			Label:          "Lawful where:",
			IrrelevantWhen: citizenOnly,
			Select:         &facts.Interaction{Field: person, Value: citizen},
		},
		{
			ID:             "citizenFoundCommitting",
			Label:          "Found the person committing\nan indictable offence [s. 494(1)(a)]",
			IrrelevantWhen: citizenOnly,
		},
		{
			ID:             "citizenPursuit",
			Label:          "Accused being pursued",
			Detail:         "The citizen has reasonable grounds to believe the person has committed a criminal offence (of any type) and is escaping from and freshly pursued by someone with lawful authority to arrest them [s. 494(1)(b)]",
			IrrelevantWhen: citizenOnly,
		},
		{
			ID:             "citizenProperty",
			Label:          "Offence committed in regard\nto citizen's property",
			Detail:         "The citizen is the owner or lawful possessor of property (or their authorized agent) and they found the person committing any offence in regard to their property (a) at the time of the offence or (b) within a reasonable time after the offence, if it wasn't feasible to get a police officer [s. 494(2)].",
			IrrelevantWhen: citizenOnly,
		},
		{
			ID:             "citizenReleaseToPeaceOfficer",
			Label:          "The person must be delivered\nforthwith to a peace officer [s. 494(3)].",
			IrrelevantWhen: citizenOnly,
		},
		{
			ID:             NodePoliceArresting,
			Label:          "Is there a warrant?",
			IrrelevantWhen: policeWithWarrant,
			Select:         &facts.Interaction{Field: person, Value: police},
		},
		{
			ID:             "policeArrestWarrant",
			Label:          "Police may arrest",
			IrrelevantWhen: policeWithWarrant,
		},
		{
			ID:             "policeWarrantless",
			Label:          "Lawful where:",
			Detail:         "[s. 495(1)]",
			IrrelevantWhen: policeWithoutWarrant,
		},
		{
			ID:             "policeIndictable",
			Label:          "The person has committed\nor is about to commit\nan indictable offence",
			IrrelevantWhen: policeWithoutWarrant,
		},
		{
			ID:             "policeInAct",
			Label:          "Police find the person\ncommitting a criminal offence\n(of any type)",
			IrrelevantWhen: policeWithoutWarrant,
		},
		{
			ID:             "policeBelieveWarrant",
			Label:          "Police believe person\nis subject to a warrant",
			IrrelevantWhen: policeWithoutWarrant,
		},
		{
			ID:             "policeWarrantlessCategory",
			Label:          "Is the offence a s. 553, hybrid,\nor summary conviction offence?",
			IrrelevantWhen: []Condition{When(warrant, Equals(yes))},
		},
		{
			ID:             "policeWarrantlessPublic",
			Label:          "Can the public interest be\nsatisfied without arrest?",
			Detail:         "Officer must have reasonable grounds to believe it can - criteria set out in s. 495(2)(d)(i-iii) and s. 495(2)(e).",
			IrrelevantWhen: []Condition{When(warrant, Equals(yes)), indictableOnly},
		},
		{
			ID:             "policeAppearanceNotice",
			Label:          "Police shall issue an appearance notice",
			Detail:         "[s. 496] Although they do technically still have the power to make an arrest under s. 495(1). This means that an arrest is still valid under the Criminal Code and the person may not resist, but they could bring a civil suit for assault or false imprisonment [s. 495(3)].",
			IrrelevantWhen: []Condition{When(warrant, Equals(yes)), indictableOnly},
		},
		{
			ID:             "policeArrestWarrantless",
			Label:          "Police may arrest",
			IrrelevantWhen: []Condition{When(warrant, Equals(yes))},
		},
		{
			ID:             NodeWarrantApplication,
			Label:          "Justice may, after reviewing an information:",
			Detail:         "Police or anyone else can lay an information before a justice, must make case to compel appearance of accused [s. 507(1)]",
			IrrelevantWhen: policeWithWarrant,
		},
		{
			ID:             "summons",
			Label:          "Issue a summons",
			Detail:         "Must be served personally",
			IrrelevantWhen: []Condition{When(person, Equals(citizen)), When(warrant, Known())},
		},
		{
			ID:             "warrantIssue",
			Label:          "Issue a warrant",
			Detail:         "Occurs where the justice has reasonable grounds to believe that it is necessary in the public interest [s. 507(4)]",
			IrrelevantWhen: policeWithWarrant,
		},
		{
			ID:             "releaseWarrantEndorsement",
			Label:          "Has the judge endorsed the warrant?",
			IrrelevantWhen: policeWithWarrant,
		},
		{
			ID:     "releaseWarrantEndorsed",
			Label:  "May release subject to conditions",
			Detail: "Officer in charge can release subject to a number of possible conditions including promises to appear or entering into a recognizance [s. 499].",
			IrrelevantWhen: []Condition{
				When(person, Equals(citizen)),
				When(warrant, Equals(no)),
				When(category, Equals(s469)),
			},
		},
		{
			ID:    "releaseOffenceCategory",
			Label: "Release depends on offence",
		},
		{
			ID:             "releaseSummary",
			Label:          "s. 553, hybrid, or summary offence",
			IrrelevantWhen: []Condition{When(category, NoneOf(summary, hybrid, s553))},
		},
		{
			ID:             "releaseIndictable",
			Label:          "Indictable offence other than s. 469 or s. 553",
			IrrelevantWhen: []Condition{When(category, NoneOf(indictableShort, indictableLong))},
		},
		{
			ID:             NodeReleaseIndictableLess5,
			Label:          "Punishable by five years or less",
			IrrelevantWhen: []Condition{When(category, NoneOf(indictableShort))},
		},
		{
			ID:             NodeReleaseIndictableGreater5,
			Label:          "Punishable by more than five years",
			IrrelevantWhen: []Condition{When(category, NoneOf(indictableLong))},
		},
		{
			ID:             "release469",
			Label:          "s. 469 offence",
			IrrelevantWhen: []Condition{When(category, NoneOf(s469))},
		},
		{
			ID:             "releaseSuperiorOnly",
			Label:          "Only a superior court judge\ncan authorize release [s. 522]",
			IrrelevantWhen: []Condition{When(category, NoneOf(s469))},
		},
		{
			ID:             "releaseArrestingOfficerDecision",
			Label:          "Arresting officer: Is detention\nnecessary in the public interest?",
			Detail:         "[s. 497(1)] Public interest criteria are listed in s. 497(1.1)(a) and (b)",
			IrrelevantWhen: []Condition{indictableOnly},
		},
		{
			ID:             "releaseArrestingOfficer",
			Label:          "Arresting officer shall release\nwith the intention to obtain a\nsummons or with an appearance notice",
			IrrelevantWhen: []Condition{indictableOnly},
		},
		{
			ID:             "releaseOfficerInChargeDecision",
			Label:          "Officer in charge: Is detention\nnecessary in the public interest?",
			Detail:         "[s. 498(1)] Public interest criteria listed in s. 498(1.1)(a) and (b)",
			IrrelevantWhen: []Condition{When(category, OneOf(s469, indictableLong))},
		},
		{
			ID:             "releaseOfficerInCharge",
			Label:          "Officer in charge shall release\nthe person with conditions",
			Detail:         "OIC can release with intention to obtain a summons, upon a promise to appear, or upon the person entering into a recognizance. OIC may impose other conditions and undertakings, e.g. no communication with certain parties, report to an officer, no weapons [s. 503(2) and (2.1)]",
			IrrelevantWhen: []Condition{When(category, OneOf(s469, indictableLong))},
		},
		{
			ID:             NodeReleaseJustice,
			Label:          "Police must bring person before a justice",
			Detail:         "Must happen as soon as possible, within 24 hours if a justice is available [s. 503(1)]. Bail is governed by s. 515.",
			IrrelevantWhen: []Condition{When(category, OneOf(s469))},
		},
	}

	edges := []Edge{
		{From: NodeWhoArresting, To: NodeCitizenArresting, Label: "Citizen"},
		{From: NodeWhoArresting, To: NodePoliceArresting, Label: "Police officer"},
		{From: NodeCitizenArresting, To: "citizenFoundCommitting"},
		{From: NodeCitizenArresting, To: "citizenPursuit"},
		{From: NodeCitizenArresting, To: "citizenProperty"},
		{From: "citizenFoundCommitting", To: "citizenReleaseToPeaceOfficer"},
		{From: "citizenPursuit", To: "citizenReleaseToPeaceOfficer"},
		{From: "citizenProperty", To: "citizenReleaseToPeaceOfficer"},
		{From: "citizenReleaseToPeaceOfficer", To: "policeWarrantlessCategory"},
		{From: NodePoliceArresting, To: "policeArrestWarrant", Label: "Yes"},
		{From: NodePoliceArresting, To: "policeWarrantless", Label: "No"},
		{From: "policeWarrantless", To: "policeIndictable"},
		{From: "policeWarrantless", To: "policeInAct"},
		{From: "policeWarrantless", To: "policeBelieveWarrant"},
		{From: "policeIndictable", To: "policeWarrantlessCategory"},
		{From: "policeInAct", To: "policeWarrantlessCategory"},
		{From: "policeBelieveWarrant", To: "policeWarrantlessCategory"},
		{From: "policeWarrantlessCategory", To: "policeWarrantlessPublic", Label: "Yes"},
		{From: "policeWarrantlessCategory", To: "policeArrestWarrantless", Label: "No"},
		{From: "policeWarrantlessPublic", To: "policeAppearanceNotice", Label: "Yes"},
		{From: "policeWarrantlessPublic", To: "policeArrestWarrantless", Label: "No"},
		{From: NodeWarrantApplication, To: "summons"},
		{From: NodeWarrantApplication, To: "warrantIssue"},
		{From: "warrantIssue", To: NodePoliceArresting},
		{From: "policeArrestWarrant", To: "releaseWarrantEndorsement"},
		{From: "releaseWarrantEndorsement", To: "releaseWarrantEndorsed", Label: "Yes"},
		{From: "releaseWarrantEndorsement", To: "releaseOffenceCategory", Label: "No"},
		{From: "policeArrestWarrantless", To: "releaseOffenceCategory"},
		{From: "releaseOffenceCategory", To: "release469"},
		{From: "release469", To: "releaseSuperiorOnly"},
		{From: "releaseOffenceCategory", To: "releaseSummary"},
		{From: "releaseOffenceCategory", To: "releaseIndictable"},
		{From: "releaseIndictable", To: NodeReleaseIndictableLess5},
		{From: "releaseIndictable", To: NodeReleaseIndictableGreater5},
		{From: NodeReleaseIndictableLess5, To: "releaseOfficerInChargeDecision"},
		{From: NodeReleaseIndictableGreater5, To: NodeReleaseJustice},
		{From: "releaseSummary", To: "releaseArrestingOfficerDecision"},
		{From: "releaseArrestingOfficerDecision", To: "releaseArrestingOfficer", Label: "No"},
		{From: "releaseArrestingOfficerDecision", To: "releaseOfficerInChargeDecision", Label: "Yes"},
		{From: "releaseOfficerInChargeDecision", To: "releaseOfficerInCharge", Label: "No"},
		{From: "releaseOfficerInChargeDecision", To: NodeReleaseJustice, Label: "Yes"},
	}

	return MustValidate(NewGraph(nodes, edges))
}
