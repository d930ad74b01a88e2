// Package testutil holds IFC fixtures shared by package and end-to-end tests.
package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

// GlobalIds and counts of SampleIFC.
const (
	ProjectGUID  = "0YvctVUKr0kugbFTf53O9L"
	StoreyGUID   = "0Vx1yKh6P2XQBA$gDf_Ab9"
	WallGUID     = "2O2Fr$t4X7Zf8NOew3FLOH"
	BeamGUID     = "1kTvXnbbzCWw8lcMd1dR4o"
	SlabGUID     = "3cUkl32yn9qRSPvBJVyWYp"
	BeamTypeGUID = "3VXPvHrFoue9Us9RcFJkIW"

	SampleProjectName    = "Sample House"
	SampleProductCount   = 4
	WallPsetID           = 35
	WallQtoID            = 44
	BeamTypePsetID       = 53
	BeamOccurrencePsetID = 57
	BeamQtoID            = 60
)

// SampleIFC is a small IFC4 model: one storey holding a wall with common
// properties and base quantities, a typed beam and an unnamed slab.
const SampleIFC = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('ViewDefinition [ReferenceView_V1.2]'),'2;1');
FILE_NAME('sample-house.ifc','2024-05-02T10:15:00',('Jane Doe'),('Acme'),'ifc-api fixtures','ifc-api','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
/* ownership */
#1=IFCPERSON($,'Doe','Jane',$,$,$,$,$);
#2=IFCORGANIZATION($,'Acme',$,$,$);
#3=IFCPERSONANDORGANIZATION(#1,#2,$);
#4=IFCAPPLICATION(#2,'1.0','ifc-api fixtures','ifc-api');
#5=IFCOWNERHISTORY(#3,#4,$,.ADDED.,$,$,$,1714644900);
#10=IFCPROJECT('0YvctVUKr0kugbFTf53O9L',#5,'Sample House',$,$,$,$,$,$);
#13=IFCBUILDINGSTOREY('0Vx1yKh6P2XQBA$gDf_Ab9',#5,'Level 1',$,$,$,$,$,.ELEMENT.,0.);
#14=IFCRELAGGREGATES('2Jo69Ck7R4Btr8UBs7FS7o',#5,$,$,#10,(#13));
/* wall */
#20=IFCWALL('2O2Fr$t4X7Zf8NOew3FLOH',#5,'Basic Wall:Exterior',$,'Basic Wall:Exterior 200',$,$,'W-101',.STANDARD.);
#30=IFCPROPERTYSINGLEVALUE('IsExternal',$,IFCBOOLEAN(.F.),$);
#31=IFCPROPERTYSINGLEVALUE('FireRating',$,IFCLABEL('EI 60'),$);
#32=IFCPROPERTYSINGLEVALUE('ThermalTransmittance',$,IFCTHERMALTRANSMITTANCEMEASURE(0.25),$);
#33=IFCPROPERTYSINGLEVALUE('Finish',$,IFCLABEL('Caf\X2\00E9\X0\'),$);
#34=IFCPROPERTYENUMERATEDVALUE('Status',$,(IFCLABEL('NEW')),$);
#35=IFCPROPERTYSET('0S5HbrIFdNDOlC87Q$sexw',#5,'Pset_WallCommon',$,(#30,#31,#32,#33,#34));
#36=IFCRELDEFINESBYPROPERTIES('2cVNVAc$hva9FrLhJ_r59e',#5,$,$,(#20),#35);
#40=IFCQUANTITYLENGTH('Length',$,$,5.,$);
#41=IFCQUANTITYAREA('NetSideArea',$,$,12.5,$);
#42=IFCQUANTITYVOLUME('NetVolume',$,$,1.725,$);
#43=IFCQUANTITYCOUNT('Openings',$,$,2.,$);
#44=IFCELEMENTQUANTITY('2i$w8BYy87dvani2xjLE$7',#5,'Qto_WallBaseQuantities',$,$,(#40,#41,#42,#43));
#45=IFCRELDEFINESBYPROPERTIES('1aGVoo$ALvpZHtZrjmTJAM',#5,$,$,(#20),#44);
/* beam with type */
#50=IFCBEAM('1kTvXnbbzCWw8lcMd1dR4o',#5,'Beam B1',$,$,$,$,'B-1',.BEAM.);
#51=IFCPROPERTYSINGLEVALUE('Reference',$,IFCIDENTIFIER('HEA200'),$);
#52=IFCPROPERTYSINGLEVALUE('LoadBearing',$,IFCBOOLEAN(.F.),$);
#53=IFCPROPERTYSET('1TT1_NXa0IrleG6woopoDz',#5,'Pset_BeamCommon',$,(#51,#52));
#54=IFCBEAMTYPE('3VXPvHrFoue9Us9RcFJkIW',#5,'HEA200',$,$,(#53),$,$,$,.BEAM.);
#55=IFCRELDEFINESBYTYPE('37O8QuKEh6D0JCk39QmJWi',#5,$,$,(#50),#54);
#56=IFCPROPERTYSINGLEVALUE('LoadBearing',$,IFCBOOLEAN(.T.),$);
#57=IFCPROPERTYSET('2yFE_xzzdAIDhXzK2QkI3c',#5,'Pset_BeamCommon',$,(#56));
#58=IFCRELDEFINESBYPROPERTIES('0XkLjSgSOUpTP$j33ZyXOi',#5,$,$,(#50),#57);
#59=IFCQUANTITYLENGTH('Length',$,$,6.,$);
#60=IFCELEMENTQUANTITY('3ikASDTyPhQz0ziAFnPzMt',#5,'Qto_BeamBaseQuantities',$,$,(#59));
#61=IFCRELDEFINESBYPROPERTIES('2BoxpAKLG3JxIyiJG21DHt',#5,$,$,(#50),#60);
/* slab without name or properties */
#70=IFCSLAB('3cUkl32yn9qRSPvBJVyWYp',#5,$,'Floor slab',$,$,$,'S-01',.FLOOR.);
#80=IFCRELCONTAINEDINSPATIALSTRUCTURE('1R3WRbUfXrG7jwrGJ2uN0J',#5,$,$,(#20,#50,#70),#13);
ENDSEC;
END-ISO-10303-21;
`

// GlobalIds and counts of MEPIFC.
const (
	UnitaryEquipmentGUID = "3G3nmfZN$3yKJyF3GINhFL"
	PipeSegmentGUID      = "1Tv7Zh0eLhjopfdLi_YuAz"
	PipeSegmentTypeGUID  = "2LLazZACmtxyT$SDvrrSVk"
	CustomProductGUID    = "1mAd7RCs13sQWs_RsjVKs0"
	CustomTypeGUID       = "3E_SxlbEJ33N6xGQSflIeD"

	MEPProductCount  = 4
	PipeTypePsetID   = 22
	CustomTypePsetID = 32
)

// MEPIFC is an IFC4 plant room: an air handling unit, a pipe segment that
// inherits a property set from its IfcPipeSegmentType, and an instance of
// IFCSITEWIDGET, a product type no IFC release defines, typed by an equally
// unknown IFCSITEWIDGETTYPE.
const MEPIFC = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('ViewDefinition [ReferenceView_V1.2]'),'2;1');
FILE_NAME('plant-room.ifc','2024-06-11T08:30:00',('Sam Lee'),('Acme MEP'),'ifc-api fixtures','ifc-api','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
#1=IFCPROJECT('1ww2aYVjCNHH9J9lC3uNYq',$,'Plant Room',$,$,$,$,$,$);
#2=IFCBUILDINGSTOREY('1LOupHzCEUXp7dnsNWG2$5',$,'Basement',$,$,$,$,$,.ELEMENT.,-3.);
#3=IFCRELAGGREGATES('2xpLGIftSSj$DaURZc7MvA',$,$,$,#1,(#2));
#4=IFCLOCALPLACEMENT($,$);
#10=IFCUNITARYEQUIPMENT('3G3nmfZN$3yKJyF3GINhFL',$,'AHU-01',$,'AHU Type A',#4,$,'TAG-7',.AIRHANDLER.);
#20=IFCPIPESEGMENT('1Tv7Zh0eLhjopfdLi_YuAz',$,'Pipe 1',$,$,#4,$,'P-1',.RIGIDSEGMENT.);
#21=IFCPROPERTYSINGLEVALUE('NominalDiameter',$,IFCPOSITIVELENGTHMEASURE(50.),$);
#22=IFCPROPERTYSET('3sHe9BGDVSH0f$2qoIX7ux',$,'Pset_PipeSegmentTypeCommon',$,(#21));
#23=IFCPIPESEGMENTTYPE('2LLazZACmtxyT$SDvrrSVk',$,'Steel DN50',$,$,(#22),$,$,$,.RIGIDSEGMENT.);
#24=IFCRELDEFINESBYTYPE('05JwPdXYQttd1UYtFyv2h1',$,$,$,(#20),#23);
#30=IFCSITEWIDGET('1mAd7RCs13sQWs_RsjVKs0',$,'Widget',$,'Widget Mk2',#4,$,'WG-1',$);
#31=IFCPROPERTYSINGLEVALUE('Colour',$,IFCLABEL('Orange'),$);
#32=IFCPROPERTYSET('2YUluv6e_l$hHMBYcv32Z9',$,'Pset_WidgetCommon',$,(#31));
#33=IFCSITEWIDGETTYPE('3E_SxlbEJ33N6xGQSflIeD',$,'Widget Type',$,$,(#32),$,'WT-1',$,$);
#34=IFCRELDEFINESBYTYPE('3FMYGKBFMYa0AzzD4USxSw',$,$,$,(#30),#33);
#40=IFCRELCONTAINEDINSPATIALSTRUCTURE('2oc8PDVwOJjRkh0XONuzMg',$,$,$,(#10,#20,#30),#2);
ENDSEC;
END-ISO-10303-21;
`

// NoProjectIFC is an IFC2X3 file without an IfcProject.
const NoProjectIFC = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION(('ViewDefinition [CoordinationView_V2.0]'),'2;1');
FILE_NAME('orphan.ifc','2024-05-02T10:15:00',(''),(''),'','','');
FILE_SCHEMA(('IFC2X3'));
ENDSEC;
DATA;
#1=IFCWALLSTANDARDCASE('1IyF7fzD7VOZ5Cv38ufPZv',$,'Orphan wall',$,$,$,$,$);
ENDSEC;
END-ISO-10303-21;
`

// UnnamedProjectIFC has a project whose Name is unset.
const UnnamedProjectIFC = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION((''),'2;1');
FILE_NAME('','',(''),(''),'','','');
FILE_SCHEMA(('IFC4X3_ADD2'));
ENDSEC;
DATA;
#1=IFCPROJECT('0YvctVUKr0kugbFTf53O9L',$,$,$,$,$,$,$,$);
ENDSEC;
END-ISO-10303-21;
`

// DanglingPsetGUID names the wall of DanglingPsetIFC whose property
// relationship references a missing instance.
const DanglingPsetGUID = "2O2Fr$t4X7Zf8NOew3FLOH"

const DanglingPsetIFC = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION((''),'2;1');
FILE_NAME('','',(''),(''),'','','');
FILE_SCHEMA(('IFC4'));
ENDSEC;
DATA;
#20=IFCWALL('2O2Fr$t4X7Zf8NOew3FLOH',$,'Broken wall','Missing pset',$,$,$,'W-9',$);
#36=IFCRELDEFINESBYPROPERTIES('2cVNVAc$hva9FrLhJ_r59e',$,$,$,(#20),#999);
ENDSEC;
END-ISO-10303-21;
`

// UnsupportedSchemaIFC declares a schema the engine does not read.
const UnsupportedSchemaIFC = `ISO-10303-21;
HEADER;
FILE_DESCRIPTION((''),'2;1');
FILE_NAME('','',(''),(''),'','','');
FILE_SCHEMA(('IFC2X2_FINAL'));
ENDSEC;
DATA;
ENDSEC;
END-ISO-10303-21;
`

// GarbageIFC is not a STEP file at all.
const GarbageIFC = "this is not an IFC file\n"

// WriteFile writes content into a fresh temp dir and returns its path.
func WriteFile(t testing.TB, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write fixture %s: %v", name, err)
	}
	return path
}
