package ifc

import (
	"strings"
	"sync"
)

// Supported schema families. Later addenda (IFC4X3_ADD2, IFC2X3_TC1, ...)
// resolve to their family.
const (
	SchemaIFC2X3 = "IFC2X3"
	SchemaIFC4   = "IFC4"
	SchemaIFC4X1 = "IFC4X1"
	SchemaIFC4X2 = "IFC4X2"
	SchemaIFC4X3 = "IFC4X3"
)

var supportedSchemas = map[string]bool{
	SchemaIFC2X3: true,
	SchemaIFC4:   true,
	SchemaIFC4X1: true,
	SchemaIFC4X2: true,
	SchemaIFC4X3: true,
}

// SchemaFamily normalises a FILE_SCHEMA identifier, returning false when the
// family is not supported.
func SchemaFamily(identifier string) (string, bool) {
	id := strings.ToUpper(strings.TrimSpace(identifier))
	if i := strings.IndexAny(id, "_ "); i >= 0 {
		id = id[:i]
	}
	return id, supportedSchemas[id]
}

// entityDef describes one entity type of the IFC hierarchy. attrs holds the
// explicit attributes introduced at this level, keyed by name, with their
// absolute position in the instance's parameter list.
type entityDef struct {
	name  string
	super string
	attrs map[string]int
}

var (
	rootAttrs = map[string]int{"GlobalId": 0, "OwnerHistory": 1, "Name": 2, "Description": 3}

	// entityDefs holds the levels that introduce attributes the reader
	// resolves by name, plus the abstract roots of each family.
	entityDefs = []entityDef{
		{name: "IfcRoot", attrs: rootAttrs},

		// object definitions
		{name: "IfcObjectDefinition", super: "IfcRoot"},
		{name: "IfcObject", super: "IfcObjectDefinition", attrs: map[string]int{"ObjectType": 4}},
		{name: "IfcContext", super: "IfcObjectDefinition", attrs: map[string]int{"ObjectType": 4, "LongName": 5, "Phase": 6}},
		{name: "IfcProduct", super: "IfcObject", attrs: map[string]int{"ObjectPlacement": 5, "Representation": 6}},
		{name: "IfcElement", super: "IfcProduct", attrs: map[string]int{"Tag": 7}},
		{name: "IfcSpatialElement", super: "IfcProduct", attrs: map[string]int{"LongName": 7}},

		// type objects
		{name: "IfcTypeObject", super: "IfcObjectDefinition", attrs: map[string]int{"ApplicableOccurrence": 4, "HasPropertySets": 5}},
		{name: "IfcTypeProduct", super: "IfcTypeObject", attrs: map[string]int{"RepresentationMaps": 6, "Tag": 7}},
		{name: "IfcElementType", super: "IfcTypeProduct", attrs: map[string]int{"ElementType": 8}},
		{name: "IfcSpatialElementType", super: "IfcTypeProduct", attrs: map[string]int{"ElementType": 8}},

		// relationships
		{name: "IfcRelationship", super: "IfcRoot"},
		{name: "IfcRelDefines", super: "IfcRelationship"},
		{name: "IfcRelDefinesByProperties", super: "IfcRelDefines", attrs: map[string]int{"RelatedObjects": 4, "RelatingPropertyDefinition": 5}},
		{name: "IfcRelDefinesByType", super: "IfcRelDefines", attrs: map[string]int{"RelatedObjects": 4, "RelatingType": 5}},
		{name: "IfcRelDecomposes", super: "IfcRelationship"},
		{name: "IfcRelAggregates", super: "IfcRelDecomposes", attrs: map[string]int{"RelatingObject": 4, "RelatedObjects": 5}},
		{name: "IfcRelNests", super: "IfcRelDecomposes", attrs: map[string]int{"RelatingObject": 4, "RelatedObjects": 5}},
		{name: "IfcRelConnects", super: "IfcRelationship"},
		{name: "IfcRelContainedInSpatialStructure", super: "IfcRelConnects", attrs: map[string]int{"RelatedElements": 4, "RelatingStructure": 5}},
		{name: "IfcRelAssociates", super: "IfcRelationship", attrs: map[string]int{"RelatedObjects": 4}},
		{name: "IfcRelAssigns", super: "IfcRelationship", attrs: map[string]int{"RelatedObjects": 4}},

		// property definitions
		{name: "IfcPropertyDefinition", super: "IfcRoot"},
		{name: "IfcPropertySetDefinition", super: "IfcPropertyDefinition"},
		{name: "IfcPropertySet", super: "IfcPropertySetDefinition", attrs: map[string]int{"HasProperties": 4}},
		{name: "IfcQuantitySet", super: "IfcPropertySetDefinition"},
		{name: "IfcElementQuantity", super: "IfcQuantitySet", attrs: map[string]int{"MethodOfMeasurement": 4, "Quantities": 5}},

		// properties (not rooted)
		{name: "IfcPropertyAbstraction"},
		{name: "IfcProperty", super: "IfcPropertyAbstraction", attrs: map[string]int{"Name": 0, "Description": 1}},
		{name: "IfcSimpleProperty", super: "IfcProperty"},
		{name: "IfcPropertySingleValue", super: "IfcSimpleProperty", attrs: map[string]int{"NominalValue": 2, "Unit": 3}},
		{name: "IfcPropertyEnumeratedValue", super: "IfcSimpleProperty", attrs: map[string]int{"EnumerationValues": 2, "EnumerationReference": 3}},
		{name: "IfcPropertyListValue", super: "IfcSimpleProperty", attrs: map[string]int{"ListValues": 2, "Unit": 3}},
		{name: "IfcPropertyBoundedValue", super: "IfcSimpleProperty", attrs: map[string]int{"UpperBoundValue": 2, "LowerBoundValue": 3, "Unit": 4, "SetPointValue": 5}},
		{name: "IfcPropertyTableValue", super: "IfcSimpleProperty", attrs: map[string]int{"DefiningValues": 2, "DefinedValues": 3}},
		{name: "IfcPropertyReferenceValue", super: "IfcSimpleProperty", attrs: map[string]int{"UsageName": 2, "PropertyReference": 3}},
		{name: "IfcComplexProperty", super: "IfcProperty", attrs: map[string]int{"UsageName": 2, "HasProperties": 3}},

		// quantities (not rooted)
		{name: "IfcPhysicalQuantity", attrs: map[string]int{"Name": 0, "Description": 1}},
		{name: "IfcPhysicalSimpleQuantity", super: "IfcPhysicalQuantity", attrs: map[string]int{"Unit": 2}},
		{name: "IfcQuantityLength", super: "IfcPhysicalSimpleQuantity", attrs: map[string]int{"LengthValue": 3}},
		{name: "IfcQuantityArea", super: "IfcPhysicalSimpleQuantity", attrs: map[string]int{"AreaValue": 3}},
		{name: "IfcQuantityVolume", super: "IfcPhysicalSimpleQuantity", attrs: map[string]int{"VolumeValue": 3}},
		{name: "IfcQuantityCount", super: "IfcPhysicalSimpleQuantity", attrs: map[string]int{"CountValue": 3}},
		{name: "IfcQuantityWeight", super: "IfcPhysicalSimpleQuantity", attrs: map[string]int{"WeightValue": 3}},
		{name: "IfcQuantityTime", super: "IfcPhysicalSimpleQuantity", attrs: map[string]int{"TimeValue": 3}},
		{name: "IfcQuantityNumber", super: "IfcPhysicalSimpleQuantity", attrs: map[string]int{"NumberValue": 3}},
		{name: "IfcPhysicalComplexQuantity", super: "IfcPhysicalQuantity", attrs: map[string]int{"HasQuantities": 2, "Discrimination": 3, "Quality": 4, "Usage": 5}},

		// placement and shape (not rooted)
		{name: "IfcObjectPlacement"},
		{name: "IfcProductRepresentation"},
	}

	// subtypes lists the entities that add no attribute the reader resolves,
	// grouped by supertype. It is the union of IFC2X3, IFC4 and IFC4X3; where
	// an entity moved between releases the IFC4 position wins.
	subtypes = []struct {
		super string
		names []string
	}{
		{"IfcContext", []string{"IfcProject", "IfcProjectLibrary"}},
		{"IfcObject", []string{"IfcActor", "IfcControl", "IfcGroup", "IfcProcess", "IfcResource"}},
		{"IfcActor", []string{"IfcOccupant"}},
		{"IfcControl", []string{
			"IfcActionRequest", "IfcCostItem", "IfcCostSchedule", "IfcPerformanceHistory",
			"IfcPermit", "IfcProjectOrder", "IfcWorkCalendar", "IfcWorkControl",
		}},
		{"IfcWorkControl", []string{"IfcWorkPlan", "IfcWorkSchedule"}},
		{"IfcGroup", []string{"IfcAsset", "IfcInventory", "IfcStructuralLoadGroup", "IfcStructuralResultGroup", "IfcSystem"}},
		{"IfcStructuralLoadGroup", []string{"IfcStructuralLoadCase"}},
		{"IfcSystem", []string{"IfcBuildingSystem", "IfcBuiltSystem", "IfcDistributionSystem", "IfcStructuralAnalysisModel", "IfcZone"}},
		{"IfcDistributionSystem", []string{"IfcDistributionCircuit"}},
		{"IfcProcess", []string{"IfcEvent", "IfcProcedure", "IfcTask"}},
		{"IfcResource", []string{"IfcConstructionResource"}},
		{"IfcConstructionResource", []string{
			"IfcConstructionEquipmentResource", "IfcConstructionMaterialResource", "IfcConstructionProductResource",
			"IfcCrewResource", "IfcLaborResource", "IfcSubContractResource",
		}},

		// products
		{"IfcProduct", []string{
			"IfcAnnotation", "IfcLinearElement", "IfcPort", "IfcPositioningElement", "IfcProxy",
			"IfcStructuralActivity", "IfcStructuralItem",
		}},
		{"IfcLinearElement", []string{"IfcAlignmentCant", "IfcAlignmentHorizontal", "IfcAlignmentSegment", "IfcAlignmentVertical"}},
		{"IfcPort", []string{"IfcDistributionPort"}},
		{"IfcPositioningElement", []string{"IfcGrid", "IfcLinearPositioningElement", "IfcReferent"}},
		{"IfcLinearPositioningElement", []string{"IfcAlignment"}},
		{"IfcStructuralActivity", []string{"IfcStructuralAction", "IfcStructuralReaction"}},
		{"IfcStructuralAction", []string{"IfcStructuralCurveAction", "IfcStructuralPointAction", "IfcStructuralSurfaceAction"}},
		{"IfcStructuralCurveAction", []string{"IfcStructuralLinearAction"}},
		{"IfcStructuralLinearAction", []string{"IfcStructuralLinearActionVarying"}},
		{"IfcStructuralSurfaceAction", []string{"IfcStructuralPlanarAction"}},
		{"IfcStructuralPlanarAction", []string{"IfcStructuralPlanarActionVarying"}},
		{"IfcStructuralReaction", []string{"IfcStructuralCurveReaction", "IfcStructuralPointReaction", "IfcStructuralSurfaceReaction"}},
		{"IfcStructuralItem", []string{"IfcStructuralConnection", "IfcStructuralMember"}},
		{"IfcStructuralConnection", []string{"IfcStructuralCurveConnection", "IfcStructuralPointConnection", "IfcStructuralSurfaceConnection"}},
		{"IfcStructuralMember", []string{"IfcStructuralCurveMember", "IfcStructuralSurfaceMember"}},
		{"IfcStructuralCurveMember", []string{"IfcStructuralCurveMemberVarying"}},
		{"IfcStructuralSurfaceMember", []string{"IfcStructuralSurfaceMemberVarying"}},

		// spatial structure
		{"IfcSpatialElement", []string{"IfcExternalSpatialStructureElement", "IfcSpatialStructureElement", "IfcSpatialZone"}},
		{"IfcExternalSpatialStructureElement", []string{"IfcExternalSpatialElement"}},
		{"IfcSpatialStructureElement", []string{"IfcBuildingStorey", "IfcFacility", "IfcFacilityPart", "IfcSite", "IfcSpace"}},
		{"IfcFacility", []string{"IfcBridge", "IfcBuilding", "IfcMarineFacility", "IfcRailway", "IfcRoad"}},
		{"IfcFacilityPart", []string{"IfcBridgePart", "IfcFacilityPartCommon", "IfcMarinePart", "IfcRailwayPart", "IfcRoadPart"}},

		// elements
		{"IfcElement", []string{
			"IfcBuildingElement", "IfcBuiltElement", "IfcCivilElement", "IfcDistributionElement",
			"IfcElectricalElement", "IfcElementAssembly", "IfcElementComponent", "IfcEquipmentElement",
			"IfcFeatureElement", "IfcFurnishingElement", "IfcGeographicElement", "IfcGeotechnicalElement",
			"IfcTransportationDevice", "IfcVirtualElement",
		}},
		{"IfcBuildingElement", []string{
			"IfcBeam", "IfcBuildingElementComponent", "IfcBuildingElementProxy", "IfcChimney", "IfcColumn",
			"IfcCovering", "IfcCurtainWall", "IfcDoor", "IfcFooting", "IfcMember", "IfcPile", "IfcPlate",
			"IfcRailing", "IfcRamp", "IfcRampFlight", "IfcRoof", "IfcShadingDevice", "IfcSlab", "IfcStair",
			"IfcStairFlight", "IfcWall", "IfcWindow",
		}},
		{"IfcBeam", []string{"IfcBeamStandardCase"}},
		{"IfcColumn", []string{"IfcColumnStandardCase"}},
		{"IfcDoor", []string{"IfcDoorStandardCase"}},
		{"IfcMember", []string{"IfcMemberStandardCase"}},
		{"IfcPlate", []string{"IfcPlateStandardCase"}},
		{"IfcSlab", []string{"IfcSlabElementedCase", "IfcSlabStandardCase"}},
		{"IfcWall", []string{"IfcWallElementedCase", "IfcWallStandardCase"}},
		{"IfcWindow", []string{"IfcWindowStandardCase"}},
		{"IfcBuiltElement", []string{
			"IfcBearing", "IfcCourse", "IfcDeepFoundation", "IfcEarthworksElement", "IfcKerb",
			"IfcMooringDevice", "IfcNavigationElement", "IfcPavement", "IfcRail", "IfcTrackElement",
		}},
		{"IfcDeepFoundation", []string{"IfcCaissonFoundation"}},
		{"IfcEarthworksElement", []string{"IfcEarthworksFill", "IfcReinforcedSoil"}},
		{"IfcElementComponent", []string{
			"IfcBuildingElementPart", "IfcDiscreteAccessory", "IfcFastener", "IfcImpactProtectionDevice",
			"IfcMechanicalFastener", "IfcReinforcingElement", "IfcSign", "IfcVibrationDamper", "IfcVibrationIsolator",
		}},
		{"IfcReinforcingElement", []string{"IfcReinforcingBar", "IfcReinforcingMesh", "IfcTendon", "IfcTendonAnchor", "IfcTendonConduit"}},
		{"IfcFeatureElement", []string{"IfcFeatureElementAddition", "IfcFeatureElementSubtraction", "IfcSurfaceFeature"}},
		{"IfcFeatureElementAddition", []string{"IfcProjectionElement"}},
		{"IfcFeatureElementSubtraction", []string{"IfcEarthworksCut", "IfcEdgeFeature", "IfcOpeningElement", "IfcVoidingFeature"}},
		{"IfcEdgeFeature", []string{"IfcChamferEdgeFeature", "IfcRoundedEdgeFeature"}},
		{"IfcOpeningElement", []string{"IfcOpeningStandardCase"}},
		{"IfcFurnishingElement", []string{"IfcFurniture", "IfcSystemFurnitureElement"}},
		{"IfcGeotechnicalElement", []string{"IfcGeotechnicalAssembly", "IfcGeotechnicalStratum"}},
		{"IfcGeotechnicalAssembly", []string{"IfcBorehole", "IfcGeomodel", "IfcGeoslice"}},
		{"IfcTransportationDevice", []string{"IfcTransportElement", "IfcVehicle"}},

		// distribution elements
		{"IfcDistributionElement", []string{"IfcDistributionControlElement", "IfcDistributionFlowElement"}},
		{"IfcDistributionControlElement", []string{
			"IfcActuator", "IfcAlarm", "IfcController", "IfcFlowInstrument",
			"IfcProtectiveDeviceTrippingUnit", "IfcSensor", "IfcUnitaryControlElement",
		}},
		{"IfcDistributionFlowElement", []string{
			"IfcDistributionChamberElement", "IfcEnergyConversionDevice", "IfcFlowController", "IfcFlowFitting",
			"IfcFlowMovingDevice", "IfcFlowSegment", "IfcFlowStorageDevice", "IfcFlowTerminal", "IfcFlowTreatmentDevice",
		}},
		{"IfcEnergyConversionDevice", []string{
			"IfcAirToAirHeatRecovery", "IfcBoiler", "IfcBurner", "IfcChiller", "IfcCoil", "IfcCondenser",
			"IfcCooledBeam", "IfcCoolingTower", "IfcElectricGenerator", "IfcElectricMotor", "IfcEngine",
			"IfcEvaporativeCooler", "IfcEvaporator", "IfcHeatExchanger", "IfcHumidifier", "IfcMotorConnection",
			"IfcSolarDevice", "IfcTransformer", "IfcTubeBundle", "IfcUnitaryEquipment",
		}},
		{"IfcFlowController", []string{
			"IfcAirTerminalBox", "IfcDamper", "IfcDistributionBoard", "IfcElectricDistributionBoard",
			"IfcElectricDistributionPoint", "IfcElectricTimeControl", "IfcFlowMeter", "IfcProtectiveDevice",
			"IfcSwitchingDevice", "IfcValve",
		}},
		{"IfcFlowFitting", []string{"IfcCableCarrierFitting", "IfcCableFitting", "IfcDuctFitting", "IfcJunctionBox", "IfcPipeFitting"}},
		{"IfcFlowMovingDevice", []string{"IfcCompressor", "IfcFan", "IfcPump"}},
		{"IfcFlowSegment", []string{"IfcCableCarrierSegment", "IfcCableSegment", "IfcConveyorSegment", "IfcDuctSegment", "IfcPipeSegment"}},
		{"IfcFlowStorageDevice", []string{"IfcElectricFlowStorageDevice", "IfcTank"}},
		{"IfcFlowTerminal", []string{
			"IfcAirTerminal", "IfcAudioVisualAppliance", "IfcCommunicationsAppliance", "IfcElectricAppliance",
			"IfcFireSuppressionTerminal", "IfcLamp", "IfcLightFixture", "IfcLiquidTerminal", "IfcMedicalDevice",
			"IfcMobileTelecommunicationsAppliance", "IfcOutlet", "IfcSanitaryTerminal", "IfcSignal",
			"IfcSpaceHeater", "IfcStackTerminal", "IfcWasteTerminal",
		}},
		{"IfcFlowTreatmentDevice", []string{"IfcDuctSilencer", "IfcElectricFlowTreatmentDevice", "IfcFilter", "IfcInterceptor"}},

		// type objects
		{"IfcTypeObject", []string{"IfcTypeProcess", "IfcTypeResource"}},
		{"IfcTypeProcess", []string{"IfcEventType", "IfcProcedureType", "IfcTaskType"}},
		{"IfcTypeResource", []string{"IfcConstructionResourceType"}},
		{"IfcConstructionResourceType", []string{
			"IfcConstructionEquipmentResourceType", "IfcConstructionMaterialResourceType", "IfcConstructionProductResourceType",
			"IfcCrewResourceType", "IfcLaborResourceType", "IfcSubContractResourceType",
		}},
		{"IfcTypeProduct", []string{"IfcDoorStyle", "IfcWindowStyle"}},
		{"IfcSpatialElementType", []string{"IfcSpatialStructureElementType", "IfcSpatialZoneType"}},
		{"IfcSpatialStructureElementType", []string{"IfcSpaceType"}},
		{"IfcElementType", []string{
			"IfcBuildingElementType", "IfcBuiltElementType", "IfcCivilElementType", "IfcDistributionElementType",
			"IfcElementAssemblyType", "IfcElementComponentType", "IfcFurnishingElementType",
			"IfcGeographicElementType", "IfcTransportationDeviceType",
		}},
		{"IfcBuildingElementType", []string{
			"IfcBeamType", "IfcBuildingElementProxyType", "IfcChimneyType", "IfcColumnType", "IfcCoveringType",
			"IfcCurtainWallType", "IfcDoorType", "IfcFootingType", "IfcMemberType", "IfcPileType", "IfcPlateType",
			"IfcRailingType", "IfcRampFlightType", "IfcRampType", "IfcRoofType", "IfcShadingDeviceType",
			"IfcSlabType", "IfcStairFlightType", "IfcStairType", "IfcWallType", "IfcWindowType",
		}},
		{"IfcBuiltElementType", []string{
			"IfcBearingType", "IfcCourseType", "IfcDeepFoundationType", "IfcKerbType", "IfcMooringDeviceType",
			"IfcNavigationElementType", "IfcPavementType", "IfcRailType", "IfcTrackElementType",
		}},
		{"IfcDeepFoundationType", []string{"IfcCaissonFoundationType"}},
		{"IfcElementComponentType", []string{
			"IfcBuildingElementPartType", "IfcDiscreteAccessoryType", "IfcFastenerType", "IfcImpactProtectionDeviceType",
			"IfcMechanicalFastenerType", "IfcReinforcingElementType", "IfcSignType", "IfcVibrationDamperType",
			"IfcVibrationIsolatorType",
		}},
		{"IfcReinforcingElementType", []string{
			"IfcReinforcingBarType", "IfcReinforcingMeshType", "IfcTendonAnchorType", "IfcTendonConduitType", "IfcTendonType",
		}},
		{"IfcFurnishingElementType", []string{"IfcFurnitureType", "IfcSystemFurnitureElementType"}},
		{"IfcTransportationDeviceType", []string{"IfcTransportElementType", "IfcVehicleType"}},
		{"IfcDistributionElementType", []string{"IfcDistributionControlElementType", "IfcDistributionFlowElementType"}},
		{"IfcDistributionControlElementType", []string{
			"IfcActuatorType", "IfcAlarmType", "IfcControllerType", "IfcFlowInstrumentType",
			"IfcProtectiveDeviceTrippingUnitType", "IfcSensorType", "IfcUnitaryControlElementType",
		}},
		{"IfcDistributionFlowElementType", []string{
			"IfcDistributionChamberElementType", "IfcEnergyConversionDeviceType", "IfcFlowControllerType",
			"IfcFlowFittingType", "IfcFlowMovingDeviceType", "IfcFlowSegmentType", "IfcFlowStorageDeviceType",
			"IfcFlowTerminalType", "IfcFlowTreatmentDeviceType",
		}},
		{"IfcEnergyConversionDeviceType", []string{
			"IfcAirToAirHeatRecoveryType", "IfcBoilerType", "IfcBurnerType", "IfcChillerType", "IfcCoilType",
			"IfcCondenserType", "IfcCooledBeamType", "IfcCoolingTowerType", "IfcElectricGeneratorType",
			"IfcElectricMotorType", "IfcEngineType", "IfcEvaporativeCoolerType", "IfcEvaporatorType",
			"IfcHeatExchangerType", "IfcHumidifierType", "IfcMotorConnectionType", "IfcSolarDeviceType",
			"IfcTransformerType", "IfcTubeBundleType", "IfcUnitaryEquipmentType",
		}},
		{"IfcFlowControllerType", []string{
			"IfcAirTerminalBoxType", "IfcDamperType", "IfcDistributionBoardType", "IfcElectricDistributionBoardType",
			"IfcElectricTimeControlType", "IfcFlowMeterType", "IfcProtectiveDeviceType", "IfcSwitchingDeviceType",
			"IfcValveType",
		}},
		{"IfcFlowFittingType", []string{
			"IfcCableCarrierFittingType", "IfcCableFittingType", "IfcDuctFittingType", "IfcJunctionBoxType", "IfcPipeFittingType",
		}},
		{"IfcFlowMovingDeviceType", []string{"IfcCompressorType", "IfcFanType", "IfcPumpType"}},
		{"IfcFlowSegmentType", []string{
			"IfcCableCarrierSegmentType", "IfcCableSegmentType", "IfcConveyorSegmentType", "IfcDuctSegmentType", "IfcPipeSegmentType",
		}},
		{"IfcFlowStorageDeviceType", []string{"IfcElectricFlowStorageDeviceType", "IfcTankType"}},
		{"IfcFlowTerminalType", []string{
			"IfcAirTerminalType", "IfcAudioVisualApplianceType", "IfcCommunicationsApplianceType",
			"IfcElectricApplianceType", "IfcElectricHeaterType", "IfcFireSuppressionTerminalType", "IfcGasTerminalType",
			"IfcLampType", "IfcLightFixtureType", "IfcLiquidTerminalType", "IfcMedicalDeviceType",
			"IfcMobileTelecommunicationsApplianceType", "IfcOutletType", "IfcSanitaryTerminalType", "IfcSignalType",
			"IfcSpaceHeaterType", "IfcStackTerminalType", "IfcWasteTerminalType",
		}},
		{"IfcFlowTreatmentDeviceType", []string{
			"IfcDuctSilencerType", "IfcElectricFlowTreatmentDeviceType", "IfcFilterType", "IfcInterceptorType",
		}},

		// relationships
		{"IfcRelConnects", []string{"IfcRelFillsElement", "IfcRelSpaceBoundary", "IfcRelVoidsElement"}},
		{"IfcRelAssociates", []string{"IfcRelAssociatesClassification", "IfcRelAssociatesMaterial"}},
		{"IfcRelAssigns", []string{"IfcRelAssignsToGroup"}},
		{"IfcPropertySetDefinition", []string{"IfcPreDefinedPropertySet"}},

		// placement and shape
		{"IfcObjectPlacement", []string{"IfcGridPlacement", "IfcLinearPlacement", "IfcLocalPlacement"}},
		{"IfcProductRepresentation", []string{"IfcMaterialDefinitionRepresentation", "IfcProductDefinitionShape"}},
	}
)

var (
	defsOnce  sync.Once
	defsByKey map[string]*entityDef
)

func definitions() map[string]*entityDef {
	defsOnce.Do(func() {
		defsByKey = make(map[string]*entityDef, len(entityDefs)*4)
		for i := range entityDefs {
			def := &entityDefs[i]
			defsByKey[strings.ToUpper(def.name)] = def
		}
		for _, group := range subtypes {
			for _, name := range group.names {
				key := strings.ToUpper(name)
				if _, dup := defsByKey[key]; !dup {
					defsByKey[key] = &entityDef{name: name, super: group.super}
				}
			}
		}
	})
	return defsByKey
}

func lookupDef(typeKey string) *entityDef {
	return definitions()[strings.ToUpper(typeKey)]
}

// CanonicalName maps an upper-case STEP keyword to the schema spelling
// (IFCWALLSTANDARDCASE -> IfcWallStandardCase). Unknown types keep the "Ifc"
// prefix and lower-case the remainder.
func CanonicalName(typeKey string) string {
	if def := lookupDef(typeKey); def != nil {
		return def.name
	}
	upper := strings.ToUpper(typeKey)
	if strings.HasPrefix(upper, "IFC") && len(upper) > 3 {
		return "Ifc" + upper[3:4] + strings.ToLower(upper[4:])
	}
	return typeKey
}

// supertype returns the parent key of key. Types missing from the table fall
// back to inferred, which maps an unknown key to a schema entity name.
func supertype(key string, inferred map[string]string) (string, bool) {
	if def := definitions()[key]; def != nil {
		return strings.ToUpper(def.super), true
	}
	if name, ok := inferred[key]; ok {
		return strings.ToUpper(name), true
	}
	return "", false
}

// isSubtype reports whether typeKey equals or descends from ancestor.
func isSubtype(typeKey, ancestor string, inferred map[string]string) bool {
	want := strings.ToUpper(ancestor)
	key := strings.ToUpper(typeKey)
	for key != "" {
		if key == want {
			return true
		}
		var ok bool
		if key, ok = supertype(key, inferred); !ok {
			return false
		}
	}
	return false
}

// attrIndex resolves an attribute name against typeKey and its supertypes.
func attrIndex(typeKey, attr string, inferred map[string]string) (int, bool) {
	key := strings.ToUpper(typeKey)
	for key != "" {
		if def := definitions()[key]; def != nil {
			if idx, ok := def.attrs[attr]; ok {
				return idx, true
			}
		}
		var ok bool
		if key, ok = supertype(key, inferred); !ok {
			return 0, false
		}
	}
	return 0, false
}

// isGUID reports whether s has the shape of a compressed IFC GlobalId.
func isGUID(s string) bool {
	if len(s) != 22 {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		if !(isAlpha(c) || isDigit(c) || c == '_' || c == '$') {
			return false
		}
	}
	return true
}
